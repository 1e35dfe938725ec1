package service

import (
	"errors"
	"fmt"

	"github.com/erazemk/najdeno/internal/db"
)

// Error kinds. Every error returned by Service either matches one of these
// with errors.Is or is an unexpected internal failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state transition")
)

// Error is a typed outcome with a message safe to show to the caller.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Unwrap lets errors.Is match the kind sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Message returns the caller-facing message of a typed error, or "" for
// internal failures.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}

// storageError translates constraint failures reported by the database into
// typed outcomes. A unique violation is a Conflict; any other constraint or
// trigger abort means the row was not in a state that allows the change.
// Other errors are returned unchanged.
func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return newError(ErrConflict, "a record with the same key already exists")
	case db.IsConstraintViolation(err):
		return newError(ErrInvalidState, "change not allowed in the current state")
	}
	return err
}
