// Package blob stores opaque binary objects (item photos, rendered QR codes)
// behind a reference string. Items only ever hold the reference.
package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a reference does not resolve to an object.
var ErrNotFound = errors.New("blob not found")

// Object is a stored blob.
type Object struct {
	Ref  string
	MIME string
	Data []byte
}

// Store persists blobs and returns references to them.
type Store interface {
	Put(ctx context.Context, data []byte, mime string) (string, error)
	Get(ctx context.Context, ref string) (*Object, error)
	Delete(ctx context.Context, ref string) error
}

// SQLStore keeps blobs in the database's blobs table.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a Store backed by db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Put stores data and returns its new reference.
func (s *SQLStore) Put(ctx context.Context, data []byte, mime string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty blob")
	}
	ref := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (ref, mime, data, created_at) VALUES (?, ?, ?, ?)`,
		ref, mime, data, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("storing blob: %w", err)
	}
	return ref, nil
}

// Get returns the blob stored under ref.
func (s *SQLStore) Get(ctx context.Context, ref string) (*Object, error) {
	obj := &Object{Ref: ref}
	err := s.db.QueryRowContext(ctx,
		`SELECT mime, data FROM blobs WHERE ref = ?`, ref,
	).Scan(&obj.MIME, &obj.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading blob: %w", err)
	}
	return obj, nil
}

// Delete removes the blob stored under ref. Deleting a missing blob is not an error.
func (s *SQLStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE ref = ?`, ref); err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}
