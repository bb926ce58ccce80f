// Package apperr defines the error taxonomy shared by every service in the
// core. Errors are raised where detected and translated into transport
// responses at exactly one boundary (the handler package).
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies an error independently of transport.
type Code string

const (
	CodeValidation   Code = "VALIDATION"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeAccessDenied Code = "ACCESS_DENIED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL"
)

// Conflict reasons. A Conflict error carries one of these so clients can
// distinguish retry-safe precondition failures.
const (
	ReasonAlreadyCompleted  = "ALREADY_COMPLETED"
	ReasonNotCompleted      = "NOT_COMPLETED"
	ReasonRewardUnavailable = "REWARD_UNAVAILABLE"
	ReasonCannotRedeem      = "CANNOT_REDEEM"
	ReasonLastAdmin         = "LAST_ADMIN"
)

type Error struct {
	Code    Code
	Reason  string
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

func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

func AccessDenied(message string) *Error {
	return &Error{Code: CodeAccessDenied, Message: message}
}

func NotFound(entity string) *Error {
	return &Error{Code: CodeNotFound, Message: entity + " not found"}
}

func Conflict(reason, message string) *Error {
	return &Error{Code: CodeConflict, Reason: reason, Message: message}
}

// Internal wraps an unexpected failure (datastore error, marshal error).
func Internal(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf extracts the code from err, or CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// ReasonOf extracts the conflict reason from err, or "".
func ReasonOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ""
}
