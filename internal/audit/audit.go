// Package audit records one event per engine state change.
//
// Recording never fails from the caller's point of view: recorders log their
// own errors and carry on, so an unavailable audit sink cannot block a
// reservation or a rental transition.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/erazemk/izposoja/internal/auth"
	"github.com/erazemk/izposoja/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Recorder receives audit events.
type Recorder interface {
	Record(ctx context.Context, e model.AuditEvent)
}

// Event builds an event for entity, stamped with a fresh id, the current time
// and the actor found on ctx. before and after are summarized as JSON; nil
// leaves the side empty.
func Event(ctx context.Context, kind, entity string, entityID int64, before, after any) model.AuditEvent {
	e := model.AuditEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Entity:     entity,
		EntityID:   entityID,
		Before:     Summary(before),
		After:      Summary(after),
		OccurredAt: time.Now().UTC(),
	}
	if a := auth.ActorFrom(ctx); !a.IsSystem() {
		id := a.UserID
		e.ActorID = &id
		e.ActorName = a.Username
	}
	return e
}

// Summary encodes v as compact JSON. It returns "" for nil and for values that
// cannot be encoded.
func Summary(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, model.AuditEvent) {}

// SlogRecorder writes events to a structured logger.
type SlogRecorder struct {
	Logger *slog.Logger
}

func (r SlogRecorder) Record(ctx context.Context, e model.AuditEvent) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "audit",
		"kind", e.Kind, "entity", e.Entity, "entity_id", e.EntityID,
		"actor", e.ActorName, "before", e.Before, "after", e.After)
}

// Inserter persists audit events.
type Inserter interface {
	InsertAuditEvent(ctx context.Context, e model.AuditEvent) error
}

// StoreRecorder persists events to the audit log table.
type StoreRecorder struct {
	Store Inserter
}

func (r StoreRecorder) Record(ctx context.Context, e model.AuditEvent) {
	if err := r.Store.InsertAuditEvent(ctx, e); err != nil {
		slog.Warn("failed to record audit event", "kind", e.Kind, "entity", e.Entity,
			"entity_id", e.EntityID, "error", err)
	}
}

// Multi fans events out to several recorders in order.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, e model.AuditEvent) {
	for _, r := range m {
		r.Record(ctx, e)
	}
}

// Buffer collects events produced inside a transaction. They are handed to a
// real recorder with Flush once the transaction has committed, and dropped if
// it rolls back.
type Buffer struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

func (b *Buffer) Record(_ context.Context, e model.AuditEvent) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Flush passes the buffered events to rec and empties the buffer.
func (b *Buffer) Flush(ctx context.Context, rec Recorder) {
	b.mu.Lock()
	events := b.events
	b.events = nil
	b.mu.Unlock()

	for _, e := range events {
		rec.Record(ctx, e)
	}
}
