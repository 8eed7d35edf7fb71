// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardError_Error(t *testing.T) {
	err := NewNotFoundError("posts", "p-1")
	assert.Equal(t, "StandardError[NOT_FOUND]: posts not found", err.Error())
	assert.Contains(t, err.Details, "p-1")
}

func TestRetryability(t *testing.T) {
	assert.True(t, NewStoreUnavailableError(fmt.Errorf("conn refused")).Retryable)

	// Business errors never retry; retrying cannot change the outcome.
	assert.False(t, NewDuplicateApplicationError("p-1", "d-1").Retryable)
	assert.False(t, NewConflictAlreadyDecidedError("a-1", "ACCEPTED").Retryable)
	assert.False(t, NewSelfApplicationError("p-1").Retryable)
	assert.False(t, NewPostNotApplicableError("p-1", "GENERAL").Retryable)
	assert.False(t, NewUnauthorizedError("caller mismatch").Retryable)
	assert.False(t, NewInvalidStatusTransitionError("project", "COMPLETED", "IN_PROGRESS").Retryable)
	assert.False(t, NewValidationFailedError("empty proposal").Retryable)
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeStoreUnavailable))
	assert.Equal(t, 0, GetRetryCount(ErrCodeDuplicateApplication))
	assert.Equal(t, 0, GetRetryCount(ErrCodeNotFound))
	assert.True(t, IsRetryableErrorCode(ErrCodeStoreUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeUnauthorized))
}

func TestNormalize(t *testing.T) {
	std := Normalize(NewUnauthorizedError("nope"))
	assert.Equal(t, ErrCodeUnauthorized, std.Code)

	wrapped := fmt.Errorf("outer: %w", NewNotFoundError("applications", "a-1"))
	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))

	plain := Normalize(fmt.Errorf("something else"))
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), plain.Code)
	assert.False(t, plain.Retryable)
}

func TestIsCode(t *testing.T) {
	err := NewConflictAlreadyDecidedError("a-1", "REJECTED")
	assert.True(t, IsCode(err, ErrCodeConflictAlreadyDecided))
	assert.False(t, IsCode(err, ErrCodeNotFound))
	assert.False(t, IsCode(nil, ErrCodeNotFound))
}
