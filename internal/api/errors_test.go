package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastcontacts/contacts-api/internal/domain"
	"github.com/fastcontacts/contacts-api/internal/service"
	"github.com/fastcontacts/contacts-api/internal/service/auth"
	"github.com/fastcontacts/contacts-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unconfirmed account", service.ErrAccountNotConfirmed, http.StatusUnauthorized},
		{"expired access token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid refresh token", auth.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"missing context identity", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"bad email token", auth.ErrInvalidEmailToken, http.StatusBadRequest},
		{"malformed path id", fmt.Errorf("%w: id has invalid format", domain.ErrInvalidID), http.StatusBadRequest},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"contact not found", store.ErrContactNotFound, http.StatusNotFound},
		{"wrapped contact not found", fmt.Errorf("%w: contact not found", store.ErrContactNotFound), http.StatusNotFound},
		{"duplicate email", store.ErrEmailExists, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusUnprocessableEntity},
		{"contact name too long", domain.ErrContactNameTooLong, http.StatusUnprocessableEntity},
		{"password too short", domain.ErrPasswordTooShort, http.StatusUnprocessableEntity},
		{"invalid email", domain.ErrInvalidEmail, http.StatusUnprocessableEntity},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Run("maps known errors to client-safe text", func(t *testing.T) {
		assert.Equal(t, "Invalid email or password", GetSafeErrorMessage(service.ErrInvalidCredentials))
		assert.Equal(t, "Contact not found", GetSafeErrorMessage(store.ErrContactNotFound))
		assert.Equal(t, "Account already exists", GetSafeErrorMessage(store.ErrEmailExists))
	})

	t.Run("domain validation errors surface the specific rule", func(t *testing.T) {
		msg := GetSafeErrorMessage(domain.ErrContactNameTooLong)
		assert.Equal(t, domain.ErrContactNameTooLong.Error(), msg)

		wrapped := fmt.Errorf("creating contact: %w", domain.ErrContactNotesTooLong)
		assert.Equal(t, domain.ErrContactNotesTooLong.Error(), GetSafeErrorMessage(wrapped))
	})

	t.Run("internal detail never leaks", func(t *testing.T) {
		msg := GetSafeErrorMessage(errors.New(`pq: connection to "10.0.0.5:5432" refused`))
		assert.Equal(t, "An unexpected error occurred", msg)
		assert.NotContains(t, msg, "10.0.0.5")
	})
}

func TestSanitizeValidationError(t *testing.T) {
	v := validator.New()

	err := v.Struct(LoginRequest{Email: "not-an-email", Password: "x"})
	require.Error(t, err)

	msg := SanitizeValidationError(err)
	assert.Equal(t, "Invalid Email: invalid email format", msg)
	assert.NotContains(t, msg, "not-an-email")

	err = v.Struct(LoginRequest{Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "Invalid Email: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
}
