package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestJWTService builds a service with a fixed clock for predictable
// expiry behavior in tests.
func newTestJWTService(secret string, lifetime time.Duration, timeFn func() time.Time) *hmacJWTService {
	return &hmacJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        lifetime,
		refreshTokenLifetime: lifetime * 4,
		emailTokenLifetime:   lifetime * 2,
		timeFunc:             timeFn,
		clockSkew:            2 * time.Minute,
	}
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	userID := uuid.New()

	svc := newTestJWTService(secret, tokenLifetime, func() time.Time {
		return fixedTime
	})

	t.Run("generates valid token", func(t *testing.T) {
		t.Parallel()
		token, expiresAt, err := svc.GenerateToken(context.Background(), userID)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.Equal(t, fixedTime.Add(tokenLifetime).Unix(), expiresAt.Unix())

		claims, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)

		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, userID.String(), claims.Subject)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		// Compare Unix timestamps to avoid timezone issues
		assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, fixedTime.Add(tokenLifetime).Unix(), claims.ExpiresAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	wrongSecret := "wrong-secret-that-is-long-enough-for-testing"
	userID := uuid.New()

	tests := []struct {
		name      string
		setupFunc func() (JWTService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func() (JWTService, string) {
				svc := newTestJWTService(secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _, _ := svc.GenerateToken(context.Background(), userID)
				return svc, token
			},
			wantErr: nil,
		},
		{
			name: "expired token",
			setupFunc: func() (JWTService, string) {
				genSvc := newTestJWTService(secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _, _ := genSvc.GenerateToken(context.Background(), userID)

				// Validate well past expiry plus the allowed clock skew
				valSvc := newTestJWTService(secret, tokenLifetime, func() time.Time {
					return fixedTime.Add(tokenLifetime + time.Hour)
				})
				return valSvc, token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "invalid signature",
			setupFunc: func() (JWTService, string) {
				genSvc := newTestJWTService(secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _, _ := genSvc.GenerateToken(context.Background(), userID)

				valSvc := newTestJWTService(wrongSecret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				return valSvc, token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func() (JWTService, string) {
				svc := newTestJWTService(secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				return svc, "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "refresh token rejected as access token",
			setupFunc: func() (JWTService, string) {
				svc := newTestJWTService(secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _, _ := svc.GenerateRefreshToken(context.Background(), userID)
				return svc, token
			},
			wantErr: ErrWrongTokenType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc()
			claims, err := svc.ValidateToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, claims)
				assert.Equal(t, userID, claims.UserID)
			}
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 15 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	userID := uuid.New()

	t.Run("valid refresh token round trip", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})

		token, expiresAt, err := svc.GenerateRefreshToken(context.Background(), userID)
		require.NoError(t, err)
		assert.True(t, expiresAt.After(fixedTime.Add(tokenLifetime)),
			"refresh token should outlive the access token")

		claims, err := svc.ValidateRefreshToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})

		token, _, err := svc.GenerateToken(context.Background(), userID)
		require.NoError(t, err)

		claims, err := svc.ValidateRefreshToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
		assert.Nil(t, claims)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		t.Parallel()
		genSvc := newTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})
		token, _, err := genSvc.GenerateRefreshToken(context.Background(), userID)
		require.NoError(t, err)

		valSvc := newTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime.Add(tokenLifetime*4 + time.Hour)
		})

		claims, err := valSvc.ValidateRefreshToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredRefreshToken)
		assert.Nil(t, claims)
	})
}

func TestEmailTokens(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	email := "someone@example.com"

	t.Run("confirmation token round trip", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})

		token, err := svc.GenerateEmailToken(context.Background(), email, TokenTypeConfirm)
		require.NoError(t, err)

		got, err := svc.ValidateEmailToken(context.Background(), token, TokenTypeConfirm)
		require.NoError(t, err)
		assert.Equal(t, email, got)
	})

	t.Run("purpose mismatch is rejected", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})

		token, err := svc.GenerateEmailToken(context.Background(), email, TokenTypeConfirm)
		require.NoError(t, err)

		// A confirmation token must not satisfy a password-reset check.
		got, err := svc.ValidateEmailToken(context.Background(), token, TokenTypeReset)
		assert.ErrorIs(t, err, ErrInvalidEmailToken)
		assert.Empty(t, got)
	})

	t.Run("unsupported purpose on generation", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})

		_, err := svc.GenerateEmailToken(context.Background(), email, TokenTypeAccess)
		assert.Error(t, err)
	})

	t.Run("expired email token", func(t *testing.T) {
		t.Parallel()
		genSvc := newTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})
		token, err := genSvc.GenerateEmailToken(context.Background(), email, TokenTypeReset)
		require.NoError(t, err)

		valSvc := newTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime.Add(tokenLifetime*2 + time.Hour)
		})

		got, err := valSvc.ValidateEmailToken(context.Background(), token, TokenTypeReset)
		assert.ErrorIs(t, err, ErrInvalidEmailToken)
		assert.Empty(t, got)
	})
}
