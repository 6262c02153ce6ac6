package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable, client-visible error classification
type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeCSRFRejected    Code = "CSRF_REJECTED"
	CodeInternal        Code = "INTERNAL"
)

// Error is a failure that is safe to show to the caller
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

// Extensions exposes the code to GraphQL clients
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Code)}
}

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is comparisons
var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated}
	ErrForbidden       = &Error{Code: CodeForbidden}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrConflict        = &Error{Code: CodeConflict}
	ErrInvalidInput    = &Error{Code: CodeInvalidInput}
)

// newError formats a message under code
func newError(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated reports a missing or invalid session
func Unauthenticated(format string, args ...interface{}) error {
	return newError(CodeUnauthenticated, format, args...)
}

// Forbidden reports a resource owned by someone else
func Forbidden(format string, args ...interface{}) error {
	return newError(CodeForbidden, format, args...)
}

// NotFound reports a missing resource
func NotFound(format string, args ...interface{}) error {
	return newError(CodeNotFound, format, args...)
}

// Conflict reports a write that clashes with existing state
func Conflict(format string, args ...interface{}) error {
	return newError(CodeConflict, format, args...)
}

// InvalidInput reports a request that fails validation
func InvalidInput(format string, args ...interface{}) error {
	return newError(CodeInvalidInput, format, args...)
}

// RateLimited reports a client over its request budget
func RateLimited(format string, args ...interface{}) error {
	return newError(CodeRateLimited, format, args...)
}

// CSRFRejected reports a missing or wrong CSRF token
func CSRFRejected(format string, args ...interface{}) error {
	return newError(CodeCSRFRejected, format, args...)
}

// Internal is what callers see in place of an unexpected failure
func Internal() error {
	return &Error{Code: CodeInternal, Message: "internal server error"}
}

// CodeOf classifies err; anything that is not an *Error is internal
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsPublic reports whether err may be returned to the caller as is
func IsPublic(err error) bool {
	code := CodeOf(err)
	return code != CodeInternal
}

// HTTPStatus maps err to the status code REST handlers answer with
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden, CodeCSRFRejected:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
