package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a request failure for the caller.
type ErrorCode string

const (
	CodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeValidation      ErrorCode = "VALIDATION"
	CodeConflict        ErrorCode = "CONFLICT"
)

// Error carries the taxonomy code alongside the message. Anything that is not
// an *Error surfaces to the caller as a generic internal failure.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the taxonomy code of err, or "" for untyped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HTTPStatus maps the taxonomy onto HTTP status codes.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
