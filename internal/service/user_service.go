package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fastcontacts/contacts-api/internal/domain"
	"github.com/fastcontacts/contacts-api/internal/platform/mail"
	"github.com/fastcontacts/contacts-api/internal/service/auth"
	"github.com/fastcontacts/contacts-api/internal/store"
)

// Service-level errors surfaced to the API layer.
var (
	// ErrAccountNotConfirmed is returned on login attempts against an
	// account whose email has not been confirmed yet.
	ErrAccountNotConfirmed = errors.New("account email not confirmed")

	// ErrInvalidCredentials is returned on login attempts with an unknown
	// email or wrong password. Both cases collapse into one error to avoid
	// leaking which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// mailTimeout bounds background email dispatch.
const mailTimeout = 30 * time.Second

// UserService provides the account lifecycle operations: registration with
// email verification, login, token refresh, password reset, and avatar
// updates.
type UserService interface {
	// Register creates a new unconfirmed user and dispatches a confirmation
	// email in the background. Returns store.ErrEmailExists when the email
	// is taken.
	Register(ctx context.Context, email, password, name string) (*domain.User, error)

	// Login verifies credentials and issues a token pair.
	// Fails with ErrInvalidCredentials or ErrAccountNotConfirmed.
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)

	// Refresh validates a refresh token and issues a fresh token pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// Confirm consumes a confirmation token and marks the account
	// confirmed. Confirming an already-confirmed account succeeds again
	// (idempotent). Fails with auth.ErrInvalidEmailToken on a bad token and
	// store.ErrUserNotFound when the subject no longer exists.
	Confirm(ctx context.Context, token string) error

	// RequestPasswordReset dispatches a reset email if the account exists.
	// It never reports whether the account exists.
	RequestPasswordReset(ctx context.Context, email string)

	// ResetPassword consumes a reset token and replaces the account
	// password. Fails with auth.ErrInvalidEmailToken on a bad token.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// SetAvatarURL records the user's new avatar location.
	SetAvatarURL(ctx context.Context, userID uuid.UUID, avatarURL string) (*domain.User, error)
}

// TokenPair is an access/refresh token pair issued on login and refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	userStore  store.UserStore
	db         *sql.DB
	jwtService auth.JWTService
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	mailer     mail.Mailer
	baseURL    string
	logger     *slog.Logger
}

// Ensure UserServiceImpl implements UserService interface
var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService.
// baseURL is the externally visible URL used when building confirmation and
// reset links.
func NewUserService(
	userStore store.UserStore,
	db *sql.DB,
	jwtService auth.JWTService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	mailer mail.Mailer,
	baseURL string,
	logger *slog.Logger,
) *UserServiceImpl {
	return &UserServiceImpl{
		userStore:  userStore,
		db:         db,
		jwtService: jwtService,
		hasher:     hasher,
		verifier:   verifier,
		mailer:     mailer,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With("component", "user_service"),
	}
}

// Register creates a new unconfirmed user and dispatches a confirmation email.
func (s *UserServiceImpl) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	user, err := domain.NewUser(email, password, name)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password",
			"error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.dispatchConfirmation(user)

	return user, nil
}

// Login verifies credentials against the stored hash and issues a token pair.
// Unconfirmed accounts cannot authenticate.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to load user for login",
			"error", err)
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Confirmed {
		return nil, nil, ErrAccountNotConfirmed
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Refresh validates a refresh token and issues a fresh token pair.
// Validation is purely stateless: signature, expiry, and token type.
func (s *UserServiceImpl) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	// The subject must still exist; a deleted account must not be able to
	// mint new access tokens.
	if _, err := s.userStore.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issuePair(ctx, claims.UserID)
}

// Confirm consumes a confirmation token and transitions the account to
// confirmed. The transition is one-way and idempotent.
func (s *UserServiceImpl) Confirm(ctx context.Context, token string) error {
	email, err := s.jwtService.ValidateEmailToken(ctx, token, auth.TokenTypeConfirm)
	if err != nil {
		return err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Confirm(ctx, email)
	})
	if err != nil {
		return err
	}

	s.logger.Info("account confirmed")
	return nil
}

// RequestPasswordReset dispatches a reset email when the account exists.
// The caller gets no signal either way.
func (s *UserServiceImpl) RequestPasswordReset(ctx context.Context, email string) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to load user for password reset",
				"error", err)
		}
		return
	}

	s.dispatchReset(user)
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *UserServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.jwtService.ValidateEmailToken(ctx, token, auth.TokenTypeReset)
	if err != nil {
		return err
	}

	if len(newPassword) < 6 {
		return domain.ErrPasswordTooShort
	}
	if len(newPassword) > 72 {
		return domain.ErrPasswordTooLong
	}

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).UpdatePassword(ctx, user.ID, hashed)
	})
	if err != nil {
		return err
	}

	s.logger.Info("password reset completed",
		"user_id", user.ID)
	return nil
}

// GetUser retrieves a user by their ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userStore.GetByID(ctx, userID)
}

// SetAvatarURL records the user's new avatar location and returns the
// refreshed profile.
func (s *UserServiceImpl) SetAvatarURL(ctx context.Context, userID uuid.UUID, avatarURL string) (*domain.User, error) {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).UpdateAvatar(ctx, userID, avatarURL)
	})
	if err != nil {
		return nil, err
	}

	return s.userStore.GetByID(ctx, userID)
}

// issuePair mints a fresh access/refresh token pair for the user.
func (s *UserServiceImpl) issuePair(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, accessExp, err := s.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, refreshExp, err := s.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// dispatchConfirmation sends the confirmation email in the background.
// The registering request must not block on, or fail because of, SMTP.
func (s *UserServiceImpl) dispatchConfirmation(user *domain.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		token, err := s.jwtService.GenerateEmailToken(ctx, user.Email, auth.TokenTypeConfirm)
		if err != nil {
			s.logger.Error("failed to generate confirmation token",
				"error", err,
				"user_id", user.ID)
			return
		}

		link := fmt.Sprintf("%s/api/auth/confirm/%s", s.baseURL, token)
		if err := s.mailer.SendConfirmation(ctx, user.Email, user.Name, link); err != nil {
			s.logger.Error("failed to send confirmation email",
				"error", err,
				"user_id", user.ID)
		}
	}()
}

// dispatchReset sends the password-reset email in the background.
func (s *UserServiceImpl) dispatchReset(user *domain.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		token, err := s.jwtService.GenerateEmailToken(ctx, user.Email, auth.TokenTypeReset)
		if err != nil {
			s.logger.Error("failed to generate reset token",
				"error", err,
				"user_id", user.ID)
			return
		}

		link := fmt.Sprintf("%s/api/auth/reset-password?token=%s", s.baseURL, token)
		if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, link); err != nil {
			s.logger.Error("failed to send password reset email",
				"error", err,
				"user_id", user.ID)
		}
	}()
}
