package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindForbidden    Kind = "FORBIDDEN"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindDenied       Kind = "DENIED"
	KindInternal     Kind = "INTERNAL"
)

// Error is a domain error carrying a kind and a user facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// Validation reports a missing field or a violated invariant.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// NotFound reports a lookup by id that matched nothing.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Forbidden reports a restricted action aimed at the caller's own account.
// It maps to 400 rather than 403.
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// Unauthorized reports a missing or invalid credential.
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

// Denied reports a caller whose access level does not allow the route.
func Denied(msg string) *Error { return &Error{Kind: KindDenied, Message: msg} }

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// Status maps an error to its HTTP status code. Errors that are not *Error
// are unexpected and map to 500.
func Status(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case KindValidation, KindForbidden:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user facing message for err. Unexpected errors get a
// generic message so internals are not leaked.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}
