package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("creates unconfirmed user with normalized email", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("  Alice@Example.COM ", "secret123", " Alice ")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "Alice", user.Name)
		assert.False(t, user.Confirmed)
		assert.False(t, user.CreatedAt.IsZero())
		assert.False(t, user.UpdatedAt.IsZero())
	})

	t.Run("name is optional", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("bob@example.com", "secret123", "")
		require.NoError(t, err)
		assert.Empty(t, user.Name)
	})

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"empty email", "", "secret123", ErrEmptyEmail},
		{"missing at sign", "not-an-email", "secret123", ErrInvalidEmail},
		{"missing domain dot", "user@localhost", "secret123", ErrInvalidEmail},
		{"trailing at sign", "user@", "secret123", ErrInvalidEmail},
		{"password too short", "user@example.com", "short", ErrPasswordTooShort},
		{"password too long", "user@example.com", strings.Repeat("x", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			user, err := NewUser(tt.email, tt.password, "")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, user)
		})
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	t.Run("stored user with only a hash is valid", func(t *testing.T) {
		t.Parallel()
		user := &User{
			ID:             uuid.New(),
			Email:          "carol@example.com",
			HashedPassword: "$2a$10$notarealhashbutlongenough",
		}
		assert.NoError(t, user.Validate())
	})

	t.Run("user without password or hash is invalid", func(t *testing.T) {
		t.Parallel()
		user := &User{
			ID:    uuid.New(),
			Email: "carol@example.com",
		}
		assert.ErrorIs(t, user.Validate(), ErrEmptyPassword)
	})

	t.Run("nil ID is invalid", func(t *testing.T) {
		t.Parallel()
		user := &User{
			Email:          "carol@example.com",
			HashedPassword: "hash",
		}
		assert.ErrorIs(t, user.Validate(), ErrEmptyUserID)
	})
}
