package database

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Conn returns the transaction carried by ctx, or db when there is none.
// Stores call it on every query so that services can compose writes from
// several stores into one transaction.
func Conn(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}

	return db
}

// InTransaction reports whether ctx already carries a transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

type Transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// InTx runs fn inside a transaction. Nested calls join the outer transaction.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// LockKey maps a name to a pg advisory lock key.
func LockKey(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))

	return int64(h.Sum64())
}

// XactLock takes a transaction-scoped advisory lock. ctx must carry a transaction.
func XactLock(ctx context.Context, db *sql.DB, name string) error {
	if !InTransaction(ctx) {
		return fmt.Errorf("advisory lock %q requires a transaction", name)
	}

	if _, err := Conn(ctx, db).ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", LockKey(name)); err != nil {
		return fmt.Errorf("acquiring advisory lock: %w", err)
	}

	return nil
}

// TryXactLock is the non-blocking variant of XactLock.
func TryXactLock(ctx context.Context, db *sql.DB, name string) (bool, error) {
	if !InTransaction(ctx) {
		return false, fmt.Errorf("advisory lock %q requires a transaction", name)
	}

	var ok bool
	if err := Conn(ctx, db).QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1)", LockKey(name)).Scan(&ok); err != nil {
		return false, fmt.Errorf("acquiring advisory lock: %w", err)
	}

	return ok, nil
}
