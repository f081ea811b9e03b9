// Package apierr defines the stable machine-readable error codes surfaced
// to API callers, plus the wrapping error type used across the processing
// pipeline. Internal fault details never leave the process; callers see a
// code and a human-readable message only.
package apierr

import (
	"errors"
	"fmt"
)

// Code identifies an error class for client-side handling.
type Code string

const (
	// Validation errors. Terminal; no engine is invoked.
	CodeInvalidFileType   Code = "INVALID_FILE_TYPE"
	CodeFileTooLarge      Code = "FILE_TOO_LARGE"
	CodeInvalidImage      Code = "INVALID_IMAGE"
	CodeSuspiciousContent Code = "SUSPICIOUS_CONTENT"

	// Request-shape errors. Terminal.
	CodeMissingFile  Code = "MISSING_FILE"
	CodeTooManyFiles Code = "TOO_MANY_FILES"

	// Processing errors.
	CodeOCRFailed     Code = "OCR_FAILED"
	CodeInternalError Code = "INTERNAL_ERROR"
)

// Error carries a caller-facing code and message together with the
// underlying cause. The cause is for logs; Message is what callers see.
type Error struct {
	Op      string
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given operation, code and caller-facing message.
func New(op string, code Code, message string) *Error {
	return &Error{Op: op, Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(op string, code Code, message string, err error) *Error {
	return &Error{Op: op, Code: code, Message: message, Err: err}
}

// CodeOf extracts the error code from err, or CodeInternalError when err
// carries no code.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternalError
}

// MessageOf extracts the caller-facing message from err. Unknown errors map
// to a generic message so internal details are never surfaced.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "An unexpected error occurred"
}

// IsValidation reports whether the code belongs to the validation or
// request-shape family (client errors, never retried).
func IsValidation(code Code) bool {
	switch code {
	case CodeInvalidFileType, CodeFileTooLarge, CodeInvalidImage,
		CodeSuspiciousContent, CodeMissingFile, CodeTooManyFiles:
		return true
	}
	return false
}
