package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fastcontacts/contacts-api/internal/api/shared"
	"github.com/fastcontacts/contacts-api/internal/domain"
	"github.com/fastcontacts/contacts-api/internal/service"
	"github.com/fastcontacts/contacts-api/internal/service/auth"
	"github.com/fastcontacts/contacts-api/internal/store"
)

// HandleAPIError maps err to a status code and safe message and writes the
// response. A non-empty message overrides the mapped safe message; the raw
// error itself only ever reaches the logs.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountNotConfirmed),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Malformed email tokens arrive via a confirmation link rather than an
	// Authorization header, so they read as a bad request, not auth failure.
	case errors.Is(err, auth.ErrInvalidEmailToken),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// Not found errors. Contacts outside the caller's scope surface as not
	// found so their existence is never revealed.
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrContactNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Validation errors on domain entities
	case errors.Is(err, store.ErrInvalidEntity),
		isDomainValidationError(err):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// domainValidationSentinels are the domain errors that indicate client input
// failed an entity-level rule. Their messages are written to be client-safe.
// Specific sentinels come before the generic ErrValidation so message
// lookup finds the most precise rule first.
var domainValidationSentinels = []error{
	domain.ErrInvalidEmail,
	domain.ErrInvalidPassword,
	domain.ErrEmptyEmail,
	domain.ErrEmptyPassword,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrContactNameEmpty,
	domain.ErrContactNameTooLong,
	domain.ErrContactNotesTooLong,
	domain.ErrValidation,
}

func isDomainValidationError(err error) bool {
	for _, sentinel := range domainValidationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, service.ErrAccountNotConfirmed):
		return "Email address not confirmed"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidEmailToken):
		return "Invalid verification token"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrContactNotFound):
		return "Contact not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Account already exists"

	// Validation errors
	case isDomainValidationError(err):
		// Unwrap to the sentinel text so clients see the specific rule.
		for _, sentinel := range domainValidationSentinels {
			if errors.Is(err, sentinel) {
				return sentinel.Error()
			}
		}
		return "Invalid entity data"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
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
	default:
		return "validation failed"
	}
}
