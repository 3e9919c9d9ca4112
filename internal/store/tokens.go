package store

import (
	"context"
	"time"

	"github.com/erazemk/izposoja/internal/errs"
)

// RevokeToken adds a token's JTI to the revocation list.
func (q queries) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt,
	)
	if err != nil {
		return errs.Storage("revoking token", err)
	}

	// Opportunistically clean up expired revocations.
	_, _ = q.q.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, time.Now(),
	)

	return nil
}

// IsTokenRevoked checks if a token's JTI has been revoked.
func (q queries) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	err := q.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&count)
	if err != nil {
		return false, errs.Storage("checking token revocation", err)
	}
	return count > 0, nil
}
