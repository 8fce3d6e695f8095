// Package errors provides the error kinds surfaced by the HTTP layer and their status mapping
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error functions
var (
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

// StatusCode represents an HTTP status code error
type StatusCode int

// Error implements error
func (status StatusCode) Error() string {
	return http.StatusText(int(status))
}

// Status builds an error kind named after the status text of code
func Status(code int) *Error {
	return &Error{Kind: http.StatusText(code), Status: code, cause: StatusCode(code)}
}

var (
	// Invalid covers malformed bodies, missing fields and wrong content types
	Invalid *Error = Status(http.StatusBadRequest)
	// NotFound is returned when a record id is not present in the store
	NotFound *Error = Status(http.StatusNotFound)
	// MethodNotAllowed is returned for verbs not supported on a matched route
	MethodNotAllowed *Error = Status(http.StatusMethodNotAllowed)
	// Unroutable is returned for paths that match no route
	Unroutable *Error = Status(http.StatusNotFound).Reason("Unroutable")
	// Internal is any unexpected failure reaching the top-level handler
	Internal *Error = Status(http.StatusInternalServerError)
)

// Error is a custom error type for passing more information
type Error struct {
	// Kind is the returned error type
	Kind string `json:"kind"`
	// Message is the human readable string sent to the client
	Message string `json:"message"`
	// Status is the HTTP status code the error maps to
	Status int `json:"-"`

	cause error
}

var _ error = (*Error)(nil)

// New creates an internal error carrying message
func New(message string) *Error {
	return Internal.Explain("%s", message)
}

// Wrap returns an internal error caused by err
func Wrap(err error) *Error {
	return Internal.Wrap(err)
}

// Error implements error
func (e *Error) Error() string {
	str := fmt.Sprintf("[%s] ", e.Kind)
	if e.Message != "" {
		str += e.Message
	}
	if e.cause != nil {
		if _, ok := e.cause.(StatusCode); !ok {
			str += fmt.Sprintf(" (%s)", e.cause)
		}
	}
	return str
}

// Reason returns a copy of the error with kind set to given value
func (e *Error) Reason(kind string) *Error {
	err := *e
	err.Kind = kind
	return &err
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Wrap returns a copy of the error with cause set
func (e *Error) Wrap(cause error) *Error {
	err := *e
	err.cause = cause
	return &err
}

// Explain makes a copy of the error with given message
func (e *Error) Explain(message string, args ...any) *Error {
	err := *e
	err.Message = fmt.Sprintf(message, args...)
	return &err
}

// Is implements the needed interface for errors.Is.
// Two errors match when their kinds are equal.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if other, ok := target.(*Error); ok {
		return other.Kind == e.Kind
	}
	return false
}

// HTTPStatus returns the status code err maps to, 500 when err carries none
func HTTPStatus(err error) int {
	var e *Error
	if As(err, &e) && e.Status != 0 {
		return e.Status
	}
	var code StatusCode
	if As(err, &code) {
		return int(code)
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing text of err
func Message(err error) string {
	var e *Error
	if As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		if e.cause != nil {
			if _, ok := e.cause.(StatusCode); !ok {
				return e.cause.Error()
			}
		}
		return e.Kind
	}
	return err.Error()
}
