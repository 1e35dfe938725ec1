// Package store holds explicit repository functions for every entity.
// Reads return nil, nil when a row does not exist; the transactional
// operations report lost races with ErrStateChanged.
package store

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so read helpers can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	// ErrNotFound is returned by write operations whose target row is gone.
	ErrNotFound = errors.New("row not found")

	// ErrStateChanged is returned when a conditional status update matched no
	// row because another request moved the row first.
	ErrStateChanged = errors.New("row is no longer in the expected state")
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
