// Package domainerrors carries coded errors across service boundaries.
//
// Services return these so transports can translate a failure into a status
// without inspecting messages. Stores return pkg/platform/sentinel errors
// instead; services wrap those with a code when they surface them.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers.
type Code string

const (
	CodeBadRequest       Code = "bad_request"
	CodeInvalidInput     Code = "invalid_input"
	CodeMissingArguments Code = "missing_arguments"
	CodeNotFound         Code = "not_found"
	CodeParse            Code = "parse_error"
	CodeConflict         Code = "conflict"
	CodeUnauthorized     Code = "unauthorized"
	CodeInternal         Code = "internal"
	CodeTimeout          Code = "timeout"
	CodeUnavailable      Code = "unavailable"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the outermost code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsClientError reports whether err was caused by caller input.
func IsClientError(err error) bool {
	switch CodeOf(err) {
	case CodeBadRequest, CodeInvalidInput, CodeMissingArguments:
		return true
	}
	return false
}
