package services

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrorKind is the stable, machine-checkable classification carried by
// every error surfaced to a client.
type ErrorKind string

const (
	KindValidationFailed   ErrorKind = "validation_failed"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindForbidden          ErrorKind = "forbidden"
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindInvalidState       ErrorKind = "invalid_state"
	KindPreconditionFailed ErrorKind = "precondition_failed"
	KindUnavailable        ErrorKind = "unavailable"
)

// Error pairs a kind with a human-readable message. Err holds the
// underlying cause (e.g. the raw storage error) and is only exposed to
// clients when debug responses are enabled.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func ValidationFailed(msg string) *Error   { return newError(KindValidationFailed, msg) }
func Forbidden(msg string) *Error          { return newError(KindForbidden, msg) }
func NotFound(msg string) *Error           { return newError(KindNotFound, msg) }
func Conflict(msg string) *Error           { return newError(KindConflict, msg) }
func InvalidState(msg string) *Error       { return newError(KindInvalidState, msg) }
func PreconditionFailed(msg string) *Error { return newError(KindPreconditionFailed, msg) }

// Unavailable wraps a storage or transport failure.
func Unavailable(msg string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, Err: err}
}

// KindOf extracts the kind from err, defaulting to unavailable for
// anything that is not a *Error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnavailable
}

// AsError converts err to a *Error, wrapping unknown errors as
// unavailable so callers always have a kind to map.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return Unavailable("unexpected error", err)
}

// ConflictOnDuplicate maps a duplicate-key storage error to conflict
// and anything else to unavailable.
func ConflictOnDuplicate(err error, conflictMsg, failMsg string) *Error {
	if isDuplicateKey(err) {
		return Conflict(conflictMsg)
	}
	return Unavailable(failMsg, err)
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (1062). Uniqueness races are resolved by the database constraint, not
// by a pre-check.
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
