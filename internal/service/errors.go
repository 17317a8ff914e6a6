package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// The API layer maps each of them to an HTTP status code.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates a login with an unknown email or a wrong password.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrIncorrectPassword indicates the current password given to a password change is wrong.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrIncorrectPassword = errors.New("password is incorrect")

	// ErrRoleNotAllowed indicates self-registration with a role other than user or publisher.
	// API layer should map this to HTTP 400 Bad Request.
	ErrRoleNotAllowed = errors.New("role cannot be self-assigned")

	// ErrAlreadyPublished indicates a publisher trying to add a second bootcamp.
	// API layer should map this to HTTP 400 Bad Request.
	ErrAlreadyPublished = errors.New("user has already published a bootcamp")

	// ErrInvalidResetToken indicates an unknown or expired password reset token.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrGeocodingDisabled indicates a radius search without a configured geocoder.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrGeocodingDisabled = errors.New("geocoding is not configured")
)

// ServiceError wraps a failure with the service and operation it came from.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Operation)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation string, err error) *ServiceError {
	return &ServiceError{Service: service, Operation: operation, Err: err}
}
