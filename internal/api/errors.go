package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/platform/geocoder"
	"github.com/phrazzld/devcamper-api/internal/service"
	"github.com/phrazzld/devcamper-api/internal/service/auth"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrIncorrectPassword):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, geocoder.ErrNoResults):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrInvalidFilter),
		errors.Is(err, service.ErrRoleNotAllowed),
		errors.Is(err, service.ErrAlreadyPublished),
		errors.Is(err, service.ErrInvalidResetToken):
		return http.StatusBadRequest

	// Unavailable dependencies
	case errors.Is(err, service.ErrGeocodingDisabled),
		errors.Is(err, geocoder.ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that never
// carries internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return "Not authorized to access this route"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, service.ErrIncorrectPassword):
		return "Password is incorrect"

	case errors.Is(err, service.ErrNotOwned):
		return "Not authorized to modify this resource"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrBootcampNotFound):
		return "Bootcamp not found"
	case errors.Is(err, store.ErrCourseNotFound):
		return "Course not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, geocoder.ErrNoResults):
		return "Location not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrBootcampNameExists):
		return "Bootcamp name already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Duplicate field value entered"

	case errors.Is(err, store.ErrInvalidFilter):
		return "Invalid query parameter value"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, service.ErrRoleNotAllowed):
		return "Role must be user or publisher"
	case errors.Is(err, service.ErrAlreadyPublished):
		return "User has already published a bootcamp"
	case errors.Is(err, service.ErrInvalidResetToken):
		return "Invalid token"

	case errors.Is(err, service.ErrGeocodingDisabled),
		errors.Is(err, geocoder.ErrUnavailable):
		return "Geocoding service unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a request validation failure into a message
// naming the first invalid field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	default:
		return "validation failed"
	}
}
