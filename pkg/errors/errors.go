// Package errors defines the coded errors mdtouml reports.
//
// Every failure a user can cause or observe carries a [Code]: a missing source
// file, a document without a matching diagram, a rejected render request. The
// CLI prints [UserMessage] and, where one exists, a [Hint]; callers branch on
// codes with [Is]:
//
//	_, err := runner.Execute(ctx, opts)
//	if errors.Is(err, errors.ErrCodeNoMatch) {
//	    // nothing to render, not a crash
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable failure class.
type Code string

const (
	// Bad options or documents.
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidKind  Code = "INVALID_KIND"
	ErrCodeInvalidPath  Code = "INVALID_PATH"
	ErrCodeInvalidJob   Code = "INVALID_JOB"

	// Nothing to work on.
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeNoMatch      Code = "NO_MATCH"

	// The rendering server failed or answered with something other than an image.
	ErrCodeNetwork         Code = "NETWORK_ERROR"
	ErrCodeInvalidResponse Code = "INVALID_RESPONSE"

	// Local I/O failures while writing results.
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

var hints = map[Code]string{
	ErrCodeInvalidKind:     "valid types are sequence, flowchart, class and generic",
	ErrCodeNoMatch:         "run `mdtouml list <file>` to see which Mermaid blocks the document has",
	ErrCodeNetwork:         "check --server or MDTOUML_SERVER; nothing was written",
	ErrCodeInvalidResponse: "the server answered but did not return an image; check the server URL",
	ErrCodeInvalidJob:      "see `mdtouml batch --help` for the job file format",
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error that keeps cause for errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns err without its code prefix.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Hint returns a suggestion for resolving err, or "" when there is none.
func Hint(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.ServerSide() {
		return "the rendering server failed; try again later or use another --server"
	}
	return hints[GetCode(err)]
}

// StatusError is a non-200 answer from the rendering server.
type StatusError struct {
	StatusCode int
	Status     string // e.g. "502 Bad Gateway"
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return "HTTP " + e.Status
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Code returns [ErrCodeNetwork].
func (e *StatusError) Code() Code { return ErrCodeNetwork }

// ServerSide reports a 5xx status. A 4xx usually means the server could not
// decode the diagram.
func (e *StatusError) ServerSide() bool {
	return e.StatusCode >= http.StatusInternalServerError
}
