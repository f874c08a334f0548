// Package domainerrors defines the coded error type shared by services and
// transports. Services return *Error values; the HTTP layer maps the Code to a
// status and renders Title and Message into the response envelope.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error independently of any transport.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeMissingField Code = "missing_field"
	CodeValidation   Code = "validation_error"
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal_error"
)

// Error is a domain error with an optional short title, the offending field
// name, and a wrapped cause.
type Error struct {
	Code    Code
	Title   string
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithTitle sets the short label rendered as the "error" member of responses.
func (e *Error) WithTitle(title string) *Error {
	e.Title = title
	return e
}

// WithField records which input field caused the error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// From extracts the first *Error in err's chain.
func From(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	de, ok := From(err)
	return ok && de.Code == code
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// FieldOf returns the field recorded on err, or "".
func FieldOf(err error) string {
	if de, ok := From(err); ok {
		return de.Field
	}
	return ""
}
