package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/model"
)

const userColumns = `id, username, password_hash, role, created_at, deleted_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser creates a new operator account.
func (q queries) CreateUser(ctx context.Context, username, passwordHash, role string) (*model.User, error) {
	result, err := q.q.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role,
	)
	if err != nil {
		return nil, errs.Storage("creating user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, errs.Storage("getting user id", err)
	}

	return q.GetUser(ctx, id)
}

// GetUser returns a user by ID, or nil if there is none.
func (q queries) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(q.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage("getting user", err)
	}
	return u, nil
}

// GetUserByUsername returns the active user with the given name, or nil.
func (q queries) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(q.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? AND deleted_at IS NULL`, username,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage("getting user by username", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func (q queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, errs.Storage("listing users", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errs.Storage("scanning user", err)
		}
		users = append(users, *u)
	}
	return users, errs.Storage("listing users", rows.Err())
}

// UpdateUserRole changes a user's role.
func (q queries) UpdateUserRole(ctx context.Context, id int64, role string) error {
	_, err := q.q.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		role, id,
	)
	return errs.Storage("updating user", err)
}

// UpdateUserPassword updates a user's password hash.
func (q queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := q.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	return errs.Storage("updating user password", err)
}

// DeleteUser soft-deletes a user.
func (q queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.q.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	return errs.Storage("deleting user", err)
}
