// Package apperrors carries the structured error codes session-affecting
// operations return, so the transport layer can map them to responses
// without string matching.
package apperrors

import (
	"errors"
	"fmt"
)

// Error pairs a machine-readable code with a human-readable reason.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error ...
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New ...
func New(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from an error chain, or empty when the error is
// not structured.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
