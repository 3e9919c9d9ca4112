// Package store is the SQLite persistence layer for costumes, customers,
// rentals, users and the audit log.
//
// Every query method is available both on *Store (autocommit) and on *Tx
// (inside a transaction opened with InTx). Driver failures are returned as
// errs.KindStorageUnavailable; unknown ids as errs.KindNotFound.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/izposoja/internal/errs"
)

// dialect builds the filtered list queries.
var dialect = goqu.Dialect("sqlite3")

// Querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type Querier interface {
	sqlx.ExtContext
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries carries every query method; Store and Tx embed it.
type queries struct {
	q Querier
}

// Store is the database handle.
type Store struct {
	queries
	db *sqlx.DB
}

// Tx is a store bound to an open transaction.
type Tx struct {
	queries
}

// New wraps an open database.
func New(db *sql.DB) *Store {
	x := sqlx.NewDb(db, "sqlite")
	return &Store{queries: queries{q: x}, db: x}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// InTx runs fn inside a transaction. The transaction is committed if fn
// returns nil and rolled back otherwise. Errors returned by fn pass through
// unchanged.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.Storage("beginning transaction", err)
	}

	defer func() {
		p := recover()
		switch {
		case p != nil:
			_ = tx.Rollback()
			panic(p)

		case err != nil:
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("rolling back: %w. original error: %w", rbErr, err)
			}

		default:
			if cErr := tx.Commit(); cErr != nil {
				err = errs.Storage("committing transaction", cErr)
			}
		}
	}()

	return fn(&Tx{queries: queries{q: tx}})
}

// get scans a single row into dest, mapping no rows to a not-found error.
func (q queries) get(ctx context.Context, dest any, entity string, id int64, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q.q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound(entity, id)
	}
	if err != nil {
		return errs.Storage("getting "+entity, err)
	}
	return nil
}

// selectDataset runs a goqu dataset and scans all rows into dest.
func (q queries) selectDataset(ctx context.Context, dest any, op string, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return errs.Storage("building "+op+" query", err)
	}
	if err := sqlx.SelectContext(ctx, q.q, dest, query, args...); err != nil {
		return errs.Storage(op, err)
	}
	return nil
}

// affectedOne reports whether res touched exactly one row.
func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
