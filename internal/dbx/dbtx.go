// Package dbx provides the small database abstractions repositories share:
// DBTX, implemented by both *sql.DB and *sql.Tx, and Transactor, which lets
// services run several repository calls as one atomic unit without knowing
// which store sits underneath.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is the unit of work passed to a Transactor.
type TxFunc func(ctx context.Context, tx DBTX) error

// Transactor hands out the plain connection and runs units of work atomically.
type Transactor interface {
	// Conn returns the handle used outside of transactions. It may be nil for
	// stores that do not speak SQL.
	Conn() DBTX
	// WithinTx runs fn so that all of its writes commit together or not at all.
	WithinTx(ctx context.Context, fn TxFunc) error
}

// WithTx begins a transaction on db, runs fn with it and commits when fn
// returns nil. Errors and panics roll back; panics are rethrown.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// SQLTransactor is the Transactor over a database/sql pool.
type SQLTransactor struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewSQLTransactor wraps db. Transactions use read committed isolation,
// which is enough for the conditional updates the repositories issue.
func NewSQLTransactor(db *sql.DB) *SQLTransactor {
	return &SQLTransactor{db: db, opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted}}
}

func (t *SQLTransactor) Conn() DBTX { return t.db }

func (t *SQLTransactor) WithinTx(ctx context.Context, fn TxFunc) error {
	return WithTx(ctx, t.db, t.opts, fn)
}
