package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTaskNotFound   = NewError(ErrCodeNotFound, "task not found")
	ErrUnauthorized   = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload = NewError(ErrCodeInvalid, "invalid payload")

	// ErrStaleWrite rejects a buffered write whose task changed in the store
	// after the write was buffered.
	ErrStaleWrite = NewError(ErrCodeConflict, "task changed after this write was buffered")
)

// StoreUnavailable marks a write the store could not take because it was
// unreachable or timed out. Only these writes may be retried later.
func StoreUnavailable(err error) *Error {
	return WrapError(ErrCodeUnavailable, "task store unavailable", err)
}

// StoreConflict marks a write rejected by a store constraint.
func StoreConflict(err error) *Error {
	return WrapError(ErrCodeConflict, "task conflicts with stored data", err)
}

// SourceUnavailable reports that a dashboard data source could not be read.
func SourceUnavailable(source string, err error) *Error {
	return WrapError(ErrCodeUnavailable, source+" source unavailable", err)
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// ValidationDetails extracts the violation list carried by err, if any.
func ValidationDetails(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
