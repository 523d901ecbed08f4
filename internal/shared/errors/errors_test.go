package errors

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_TypesAndCodes(t *testing.T) {
	tests := []struct {
		name  string
		err   *AppError
		typ   ErrorType
		code  int
		check func(error) bool
	}{
		{"validation", NewValidationError("bad amount"), ErrorTypeValidation, http.StatusBadRequest, IsValidationError},
		{"not found", NewNotFoundError("voucher not found"), ErrorTypeNotFound, http.StatusNotFound, IsNotFoundError},
		{"limit", NewLimitExceededError("wallet limit reached"), ErrorTypeLimitExceeded, http.StatusConflict, IsLimitExceededError},
		{"storage", NewStorageError("read failed", driver.ErrBadConn), ErrorTypeStorage, http.StatusServiceUnavailable, IsStorageError},
		{"unknown", NewOutcomeUnknownError("claim failed", errors.New("i/o timeout")), ErrorTypeOutcomeUnknown, http.StatusServiceUnavailable, IsOutcomeUnknownError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.typ, tc.err.Type)
			assert.Equal(t, tc.code, tc.err.Code)

			wrapped := fmt.Errorf("store: %w", tc.err)
			assert.True(t, tc.check(wrapped))
			assert.True(t, IsAppError(wrapped))
		})
	}
}

func TestAppError_UnwrapCause(t *testing.T) {
	err := NewStorageError("insert failed", driver.ErrBadConn)
	assert.ErrorIs(t, err, driver.ErrBadConn)
	assert.Contains(t, err.Error(), "storage_failure")
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(errors.New("Error 1062: Duplicate entry 'abc' for key 'PRIMARY'")))
	assert.True(t, IsDuplicateError(errors.New(`ERROR: duplicate key value violates unique constraint "vouchers_pkey"`)))
	assert.True(t, IsDuplicateError(errors.New("constraint failed: UNIQUE constraint failed: vouchers.id (1555)")))
	assert.False(t, IsDuplicateError(errors.New("connection refused")))
	assert.False(t, IsDuplicateError(nil))
}
