package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors for transport mapping
type ErrorType string

const (
	ErrTypeValidation    ErrorType = "VALIDATION"
	ErrTypeParse         ErrorType = "PARSE"
	ErrTypeColumnMissing ErrorType = "COLUMN_MISSING"
	ErrTypeNotFound      ErrorType = "NOT_FOUND"
	ErrTypeInternal      ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Details map[string]interface{}
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail entry to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// Helper functions for common error types

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewParseError creates a parse error for unreadable input
func NewParseError(message string, err error) *AppError {
	return NewAppError(ErrTypeParse, message, err)
}

// NewColumnMissingError creates an error for a required dataset column
func NewColumnMissingError(column string) *AppError {
	return NewAppError(ErrTypeColumnMissing, fmt.Sprintf("required column %q not found", column), nil).
		WithDetail("column", column)
}

// NewAppNotFoundError creates a not found error
func NewAppNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// WrapError wraps an unexpected error as an internal application error
func WrapError(message string, err error) *AppError {
	return NewAppError(ErrTypeInternal, message, err)
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// TypeOf returns the AppError type of err, or ErrTypeInternal when untyped
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrTypeInternal
}
