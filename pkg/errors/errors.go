// Package errors provides structured error types for tokenviz.
//
// Errors carry a machine-readable [Code] so the CLI, the HTTP server and the
// token sources agree on how a failure is reported: the server maps codes to
// status codes, the CLI prints [UserMessage], and callers branch with [Is].
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND_*: Resource not found
//   - NETWORK_*: Network-related errors
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "seek %d out of range [0, %d]", n, total)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an *Error that records cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// coder is implemented by the detail error types such as [RateLimitedError].
type coder interface {
	error
	Code() Code
}

// find returns the first coded error in err's chain.
func find(err error) (Code, string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, e.Message, true
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code(), c.Error(), true
	}
	return "", "", false
}

// Is reports whether the first coded error in err's chain has code.
func Is(err error, code Code) bool {
	got, _, ok := find(err)
	return ok && got == code
}

// GetCode returns the code of the first coded error in err's chain, or "".
func GetCode(err error) Code {
	code, _, _ := find(err)
	return code
}

// UserMessage returns the message of the first coded error in err's chain
// without its code prefix, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	if _, msg, ok := find(err); ok {
		return msg
	}
	return err.Error()
}

// RateLimitedError is returned for 429 responses.
type RateLimitedError struct {
	RetryAfter int // seconds; 0 when the server sent no Retry-After
	Message    string
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code always reports RATE_LIMITED.
func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
