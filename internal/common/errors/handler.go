// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"time"
)

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the error code, or INTERNAL_ERROR for unclassified errors.
func CodeOf(err error) ErrorCode {
	return Normalize(err).Code
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// IsRetryable reports whether the failed call may be retried. Callers must
// still avoid blind retries of non-idempotent writes after ambiguous
// failures.
func IsRetryable(err error) bool {
	return Normalize(err).Retryable
}
