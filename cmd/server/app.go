package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fastcontacts/contacts-api/internal/config"
	"github.com/fastcontacts/contacts-api/internal/platform/mail"
	"github.com/fastcontacts/contacts-api/internal/platform/objectstore"
	"github.com/fastcontacts/contacts-api/internal/platform/postgres"
	"github.com/fastcontacts/contacts-api/internal/platform/ratelimit"
	"github.com/fastcontacts/contacts-api/internal/service"
	"github.com/fastcontacts/contacts-api/internal/service/auth"
	"github.com/fastcontacts/contacts-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore    store.UserStore
	contactStore store.ContactStore

	// Service interfaces
	jwtService     auth.JWTService
	userService    service.UserService
	contactService service.ContactService

	// Platform components
	limiter     *ratelimit.Limiter
	avatarStore *objectstore.AvatarStore
	mailer      mail.Mailer
}

// newApplication creates a new application instance with all dependencies
// initialized. Core dependencies (configuration, logger, database) must be
// established before calling this.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.contactStore = postgres.NewPostgresContactStore(db, logger)

	app.mailer, err = mail.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	logger.Info("SMTP mailer initialized", "host", cfg.SMTP.Host)

	app.avatarStore, err = objectstore.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize avatar storage: %w", err)
	}
	logger.Info("Avatar storage initialized", "bucket", cfg.Storage.Bucket)

	if cfg.Redis.RateLimitEnabled {
		app.limiter, err = ratelimit.New(
			ctx,
			cfg.Redis.URL,
			cfg.Redis.RateLimitPerMinute,
			cfg.Redis.RateLimitBurst,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
		}
		logger.Info("Rate limiter initialized",
			"per_minute", cfg.Redis.RateLimitPerMinute,
			"burst", cfg.Redis.RateLimitBurst)
	}

	app.userService = service.NewUserService(
		app.userStore,
		db,
		app.jwtService,
		auth.NewBcryptHasher(0),
		auth.NewBcryptVerifier(),
		app.mailer,
		cfg.Server.BaseURL,
		logger,
	)

	app.contactService = service.NewContactService(app.contactStore, db, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.limiter != nil {
		if err := app.limiter.Close(); err != nil {
			app.logger.Error("Error closing rate limiter", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
