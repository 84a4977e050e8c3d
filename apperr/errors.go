package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindInvalidState  Kind = "invalid_state"
	KindNotFound      Kind = "not_found"
	KindLimitExceeded Kind = "limit_exceeded"
	KindConflict      Kind = "conflict"
	KindUnauthorized  Kind = "unauthorized"
	KindInternal      Kind = "internal"
)

// Error is the error type returned by services to handlers.
type Error struct {
	Kind    Kind                   `json:"code"`
	Message string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails attaches key/value details that are rendered to the caller.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{}, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return newError(KindInvalidState, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func LimitExceeded(format string, args ...interface{}) *Error {
	return newError(KindLimitExceeded, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, format, args...)
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(cause error, format string, args ...interface{}) *Error {
	e := newError(KindInternal, format, args...)
	e.cause = cause
	return e
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool    { return is(err, KindValidation) }
func IsInvalidState(err error) bool  { return is(err, KindInvalidState) }
func IsNotFound(err error) bool      { return is(err, KindNotFound) }
func IsLimitExceeded(err error) bool { return is(err, KindLimitExceeded) }
func IsConflict(err error) bool      { return is(err, KindConflict) }

func is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps err to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidState, KindLimitExceeded:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
