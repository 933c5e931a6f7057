// Package errors defines the error type the insights API renders in its
// response envelope.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries a stable machine code, the HTTP status it maps to, and a
// human readable message. Cause is kept for logs and never serialised.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err == nil:
		return e.Message
	default:
		return e.Message + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is compares by code, so a clone with a specific message still matches its
// sentinel under errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) || t == nil {
		return false
	}
	return t.Code == e.Code
}

// New builds an error without a cause.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an error around cause.
func Wrap(err error, code string, status int, message string) *Error {
	e := New(code, status, message)
	e.Err = err
	return e
}

var (
	ErrValidation    = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrUnauthorized  = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden     = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound      = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrCacheMiss     = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrMalformedData = New("MALFORMED_DATA", http.StatusUnprocessableEntity, "malformed assessment data")
	ErrTooManyReqs   = New("RATE_LIMITED", http.StatusTooManyRequests, "too many requests")
	ErrInternal      = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrUpstream      = New("UPSTREAM_UNAVAILABLE", http.StatusBadGateway, "scoring service unavailable")
	ErrUnavailable   = New("DEPENDENCY_UNAVAILABLE", http.StatusServiceUnavailable, "dependency unavailable")
)

// Clone copies a sentinel. A non-empty message replaces the sentinel's.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	out := *err
	if message != "" {
		out.Message = message
	}
	return &out
}

// NotFoundf clones ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) *Error {
	return Clone(ErrNotFound, fmt.Sprintf(format, args...))
}

// Invalid clones ErrValidation with message.
func Invalid(message string) *Error {
	return Clone(ErrValidation, message)
}

// Internal wraps cause as an INTERNAL_ERROR with message.
func Internal(err error, message string) *Error {
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, message)
}

// Unavailable wraps cause as a DEPENDENCY_UNAVAILABLE with message.
func Unavailable(err error, message string) *Error {
	return Wrap(err, ErrUnavailable.Code, ErrUnavailable.Status, message)
}

// FromError returns the first *Error in err's chain, or wraps err as an
// internal error when there is none.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err, ErrInternal.Message)
}
