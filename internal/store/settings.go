package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// JWTSecret returns the token signing secret, generating and storing one on
// first use. INSERT OR IGNORE followed by a re-read keeps concurrent first
// starts from disagreeing on the secret.
func (q queries) JWTSecret(ctx context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	if err := q.PutSettingIfAbsent(ctx, "jwt_secret", candidate); err != nil {
		return "", err
	}
	return q.Setting(ctx, "jwt_secret")
}

// PutSettingIfAbsent stores a setting unless the key already exists.
func (q queries) PutSettingIfAbsent(ctx context.Context, key, value string) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing setting %s: %w", key, err)
	}
	return nil
}

// Setting returns the value of a stored setting.
func (q queries) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := q.q.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, nil
}
