// Package common defines shared constants and sentinel errors used across
// the auth service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal    = errors.New("internal error")
	ErrorUnavailable = errors.New("service unavailable")

	// ErrorUnauthorized is the generic credential failure. It deliberately
	// carries no detail about which check failed.
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. Match with errors.Is(err, ErrorValidation);
	// a field-specific message travels in ValidationError.
	ErrorValidation = errors.New("validation error")

	// State-conflict and authorization errors, reported specifically because
	// the caller's remediation differs from a credential failure.
	ErrorAlreadyRegistered = errors.New("already registered")
	ErrorSuspended         = errors.New("account suspended")
	ErrorDOBMismatch       = errors.New("date of birth mismatch")
	ErrorDeviceMismatch    = errors.New("device mismatch")
	ErrorForbidden         = errors.New("forbidden")

	ErrorRateLimited = errors.New("too many requests")
)

// ValidationError is a shape-validation failure with a caller-facing message.
// It matches ErrorValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrorValidation }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}
