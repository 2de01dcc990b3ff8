// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// and a helper to run functions inside a transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := manager.Users(tx)
//	    ...
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
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

// TxFunc is the body of a unit of work.
type TxFunc func(ctx context.Context, tx DBTX) error

// Runner runs a unit of work. Services depend on a Runner rather than on
// *sql.DB so in-memory storage can be swapped in.
type Runner func(ctx context.Context, fn TxFunc) error

// SQLRunner returns a Runner that wraps every unit of work in WithTx.
func SQLRunner(db *sql.DB, opts *sql.TxOptions) Runner {
	return func(ctx context.Context, fn TxFunc) error {
		return WithTx(ctx, db, opts, fn)
	}
}

// DirectRunner returns a Runner that calls fn with db and no transaction.
// Meant for storage that is not backed by database/sql.
func DirectRunner(db DBTX) Runner {
	return func(ctx context.Context, fn TxFunc) error {
		return fn(ctx, db)
	}
}
