// Package errors provides application-level error types and utilities.
// It defines the error taxonomy surfaced by the voucher store: validation,
// limit, not found, storage failure and unknown-outcome errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation_error"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeLimitExceeded  ErrorType = "limit_exceeded"
	ErrorTypeStorage        ErrorType = "storage_failure"
	ErrorTypeOutcomeUnknown ErrorType = "outcome_unknown"
	ErrorTypeInternal       ErrorType = "internal_error"
	ErrorTypeBadRequest     ErrorType = "bad_request"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`

	cause error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

func newAppError(t ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

// NewLimitExceededError creates an error for a quota that is already used up.
func NewLimitExceededError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeLimitExceeded, http.StatusConflict, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details)
}

// NewStorageError reports a durable store failure where the operation
// definitely did not take effect.
func NewStorageError(message string, cause error) *AppError {
	e := newAppError(ErrorTypeStorage, http.StatusServiceUnavailable, message, nil)
	e.cause = cause
	return e
}

// NewOutcomeUnknownError reports a write whose effect on the durable store
// cannot be determined. Callers must re-read before retrying.
func NewOutcomeUnknownError(message string, cause error) *AppError {
	e := newAppError(ErrorTypeOutcomeUnknown, http.StatusServiceUnavailable, message, nil)
	e.cause = cause
	return e
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsLimitExceededError checks if the error is a limit exceeded error
func IsLimitExceededError(err error) bool {
	return isType(err, ErrorTypeLimitExceeded)
}

// IsStorageError checks if the error is a storage failure
func IsStorageError(err error) bool {
	return isType(err, ErrorTypeStorage)
}

// IsOutcomeUnknownError checks if the error is an unknown-outcome write failure
func IsOutcomeUnknownError(err error) bool {
	return isType(err, ErrorTypeOutcomeUnknown)
}

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL duplicate entry error
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// PostgreSQL unique violation
	if strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "violates unique constraint") {
		return true
	}
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	return false
}
