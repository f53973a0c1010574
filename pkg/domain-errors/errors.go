// Package domainerrors defines the error taxonomy shared by services and transport.
//
// Services return *Error values carrying a Code; the HTTP layer translates the
// Code into a status without inspecting messages.
package domainerrors

import (
	"errors"
	"strings"
)

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeDuplicate          Code = "duplicate_key"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeRateLimited        Code = "too_many_requests"
	CodeInternal           Code = "internal_error"
)

// Error is a classified error with a client-safe message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap classifies err, keeping it available to errors.Is/As.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// Validation joins field messages into one validation error.
func Validation(msgs ...string) error {
	return &Error{Code: CodeValidation, Message: strings.Join(msgs, ", ")}
}

// Duplicate reports a unique-field collision.
func Duplicate(field string) error {
	return &Error{Code: CodeDuplicate, Message: field + " already exists"}
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost domain error, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the client-safe message of the outermost domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
