package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeDuplicate        ErrorCode = "DUPLICATE"
	ErrCodePersistence      ErrorCode = "PERSISTENCE_ERROR"
	ErrCodeUnavailable      ErrorCode = "UNAVAILABLE"
	ErrCodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the outermost AppError in err's chain.
// Errors that carry no code are reported as internal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// IsPersistence checks if error is a failed write
func IsPersistence(err error) bool {
	return err != nil && CodeOf(err) == ErrCodePersistence
}

// IsUnavailable checks if error reports a missing backend connection
func IsUnavailable(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeUnavailable
}

// IsDuplicate checks if error is a natural-key collision
func IsDuplicate(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeDuplicate
}
