// internal/common/errors/errors.go
// Package errors provides standardized error handling for the collaboration
// workflow engine.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNotFound                ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateApplication    ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeConflictAlreadyDecided  ErrorCode = "CONFLICT_ALREADY_DECIDED"
	ErrCodeInvalidStatusTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeSelfApplication         ErrorCode = "SELF_APPLICATION"
	ErrCodePostNotApplicable       ErrorCode = "POST_NOT_APPLICABLE"
	ErrCodeUnauthorized            ErrorCode = "UNAUTHORIZED"
	ErrCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrCodeStoreUnavailable        ErrorCode = "STORE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewNotFoundError creates a non-retryable lookup error for a missing entity.
func NewNotFoundError(entity, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", entity),
		Details:   fmt.Sprintf("%sId: %s", entity, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError creates a non-retryable duplicate application
// error. The user can correct by not re-applying; the call is never retried.
func NewDuplicateApplicationError(postID, developerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "Application already exists",
		Details:   fmt.Sprintf("postId: %s, developerId: %s", postID, developerID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictAlreadyDecidedError signals that a concurrent decision won the
// PENDING guard. The UI should refresh state; no retry.
func NewConflictAlreadyDecidedError(applicationID, currentStatus string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConflictAlreadyDecided,
		Message:   "Application has already been decided",
		Details:   fmt.Sprintf("applicationId: %s, status: %s", applicationID, currentStatus),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStatusTransitionError creates a non-retryable state machine
// violation error.
func NewInvalidStatusTransitionError(entity, from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStatusTransition,
		Message:   fmt.Sprintf("Invalid %s status transition", entity),
		Details:   fmt.Sprintf("%s -> %s", from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSelfApplicationError rejects an author applying to their own post.
func NewSelfApplicationError(postID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSelfApplication,
		Message:   "Authors may not apply to their own post",
		Details:   fmt.Sprintf("postId: %s", postID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPostNotApplicableError rejects an application against a post type that
// does not accept applications.
func NewPostNotApplicableError(postID, postType string) *StandardError {
	return &StandardError{
		Code:      ErrCodePostNotApplicable,
		Message:   "Post does not accept applications",
		Details:   fmt.Sprintf("postId: %s, postType: %s", postID, postType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError creates a non-retryable capability error.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Caller is not permitted to perform this operation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError wraps a transient document store failure.
// Reads are safe to retry; non-idempotent writes are not.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Document store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreUnavailable:
		return 3
	default:
		return 0 // business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}
