/**
 * @description
 * This file defines the error taxonomy shared by the command handlers, the
 * storage layer and the dispatcher's response envelope. Errors carry a
 * machine-readable kind so callers can react without string matching, while
 * still wrapping the underlying cause for logs.
 */
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a command failure.
type ErrorKind string

const (
	// ErrValidation marks a malformed or missing command field. Fails fast,
	// no side effects.
	ErrValidation ErrorKind = "validation"
	// ErrNotFound marks a referenced customer or account id that does not
	// resolve to an existing record.
	ErrNotFound ErrorKind = "not_found"
	// ErrConflict marks an account number collision with an existing account.
	ErrConflict ErrorKind = "conflict"
	// ErrPersistence marks a failed storage commit; the transaction is
	// guaranteed rolled back.
	ErrPersistence ErrorKind = "persistence"
	// ErrNotification marks a failed or pending broker delivery. It never
	// affects an already committed mutation; the outbox relay owns retries.
	ErrNotification ErrorKind = "notification"
	// ErrInternal is the fallback kind for errors that escaped classification.
	ErrInternal ErrorKind = "internal"
)

// Error is a classified service error.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error with no underlying cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies an underlying error.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from anywhere in a wrapped chain. Unclassified
// errors report ErrInternal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
