package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token type values carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeConfirm = "confirm"
	TokenTypeReset   = "reset"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the user.
	// Returns the token string and its expiry, or an error if signing fails.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error)

	// ValidateToken validates an access token string and extracts the claims.
	// Fails with ErrExpiredToken, ErrInvalidToken or ErrWrongTokenType,
	// letting callers distinguish "needs refresh" from "needs login".
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed JWT refresh token for the user.
	// Refresh tokens have a longer lifetime and are used to obtain new
	// access tokens without re-authentication.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error)

	// ValidateRefreshToken validates a refresh token string and extracts the
	// claims. Fails with ErrExpiredRefreshToken, ErrInvalidRefreshToken or
	// ErrWrongTokenType.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateEmailToken creates a signed token carrying the given email as
	// subject, for confirmation links (TokenTypeConfirm) or password-reset
	// links (TokenTypeReset).
	GenerateEmailToken(ctx context.Context, email, purpose string) (string, error)

	// ValidateEmailToken validates an email token of the given purpose and
	// returns the email it was issued for. Fails with ErrInvalidEmailToken.
	ValidateEmailToken(ctx context.Context, tokenString, purpose string) (string, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType indicates the purpose of the token.
	// Used to prevent token misuse across different contexts.
	TokenType string `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
