package apierr

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// Error couples a stable machine-readable code with the HTTP status and
// client-facing message for one failure condition. The wrapped cause, when
// present, shows up in logs but is never serialized to the client.
type Error struct {
	code   Code
	status int
	msg    string
	cause  error
}

// New creates an Error without a cause.
func New(code Code, status int, message string) *Error {
	return &Error{code: code, status: status, msg: message}
}

// Wrap attaches a cause for logging and errors.Is/As chaining.
func Wrap(code Code, status int, message string, cause error) *Error {
	e := New(code, status, message)
	e.cause = cause
	return e
}

func (e *Error) Error() string {
	s := string(e.code) + ": " + e.msg
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Code() Code      { return e.code }
func (e *Error) Message() string { return e.msg }
func (e *Error) Status() int     { return e.status }

// ErrorResponse is the JSON envelope every error reply uses:
// {"error": {"code": ..., "message": ...}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Response returns the wire form of the error.
func (e *Error) Response() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: e.code, Message: e.msg}}
}

// IsNotFound reports whether err is a missing-row lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
