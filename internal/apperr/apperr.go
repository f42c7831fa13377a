// Package apperr defines the error taxonomy shared by the workflow, the
// services and the HTTP layer.
//
// Every error that reaches a user carries a Kind (which decides the HTTP
// status) and a Code (a stable message key resolved by the localizer).
// Internal errors keep the underlying cause for logging but are never shown
// verbatim to the caller.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind onto the response status used by the API.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the structured error returned by services.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two *Error values by kind and code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Unauthorized is returned when no valid identity is attached to the request.
func Unauthorized(code, msg string) *Error { return newError(KindUnauthorized, code, msg) }

// Forbidden is returned when the identity has the wrong role or is not a party to the complaint.
func Forbidden(code, msg string) *Error { return newError(KindForbidden, code, msg) }

// Validation is returned for missing or malformed input. No row is modified.
func Validation(code, msg string) *Error { return newError(KindValidation, code, msg) }

// NotFound is returned when a referenced row does not exist.
func NotFound(code, msg string) *Error { return newError(KindNotFound, code, msg) }

// Conflict is returned for business-rule violations: illegal transitions,
// duplicate final decisions, stale writes.
func Conflict(code, msg string) *Error { return newError(KindConflict, code, msg) }

// Wrap turns an infrastructure failure into an internal error.
func Wrap(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: msg, Err: err}
}

// CodeInternal is the message key shown for every internal failure.
const CodeInternal = "error.internal"

// KindOf reports the kind of err, defaulting to KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf reports the message key of err.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return CodeInternal
}

// IsKind checks whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
