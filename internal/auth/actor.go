package auth

import "context"

// Actor is the operator on whose behalf an engine operation runs. The zero
// Actor stands for the system itself (CLI commands, tests).
type Actor struct {
	UserID   int64
	Username string
	Role     string
}

// IsSystem reports whether no logged-in operator is attached.
func (a Actor) IsSystem() bool {
	return a.UserID == 0
}

type actorKey struct{}

// WithActor returns a context carrying the given actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor attached to ctx, or the system actor.
func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}
