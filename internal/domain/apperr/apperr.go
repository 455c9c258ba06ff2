// internal/domain/apperr/apperr.go

// Package apperr carries the workflow error taxonomy shared by every
// transport. Workflow operations return errors classified into four kinds:
//
//   - Validation: malformed input (field lengths, enum values); the caller
//     fixes the input and retries.
//   - Conflict: the operation lost to concurrent state (duplicate request,
//     already-resolved review, illegal status transition); the caller
//     re-reads current state before retrying.
//   - Forbidden: a permission check failed; never retried.
//   - NotFound: a referenced entity is missing or deleted.
//
// Transports map kinds to their own status codes (HTTP: 400/409/403/404).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a workflow error for the caller.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a kinded workflow error. Message is safe to show to callers;
// Err (optional) carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a KindValidation error with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a KindConflict error with a formatted message.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Forbidden returns a KindForbidden error with a formatted message.
func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a KindNotFound error with a formatted message.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kinded error. The message stays caller-safe;
// the cause is available via errors.Unwrap for logging.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, unwrapping as needed. Errors that are
// not apperr errors report KindUnknown (treated as server faults).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error's kind to the status the transport layer should
// send. Unknown kinds map to 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-safe message for err. Non-apperr errors get a
// generic message so internal details never leak to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
