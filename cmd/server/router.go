package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fastcontacts/contacts-api/internal/api"
	apiMiddleware "github.com/fastcontacts/contacts-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	rateLimit := apiMiddleware.RateLimit(apiMiddleware.RateLimitConfig{
		Logger:  app.logger,
		Limiter: app.limiter,
		Enabled: app.config.Redis.RateLimitEnabled && app.limiter != nil,
	})

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.userService)
	userHandler := api.NewUserHandler(
		app.userService,
		app.avatarStore,
		app.config.Storage.MaxAvatarBytes,
		app.logger,
	)
	contactHandler := api.NewContactHandler(app.contactService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public, rate limited per client IP)
		r.Group(func(r chi.Router) {
			r.Use(rateLimit)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/refresh", authHandler.Refresh)
			r.Get("/auth/confirm/{token}", authHandler.Confirm)
			r.Post("/auth/forgot-password", authHandler.ForgotPassword)
			r.Post("/auth/reset-password", authHandler.ResetPassword)
		})

		// Protected routes (rate limited per user)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimit)

			// Account endpoints
			r.Get("/users/me", userHandler.Me)
			r.Post("/users/avatar", userHandler.UploadAvatar)

			// Contact endpoints
			r.Get("/contacts", contactHandler.List)
			r.Post("/contacts", contactHandler.Create)
			r.Get("/contacts/birthdays", contactHandler.Birthdays)
			r.Get("/contacts/{id}", contactHandler.Get)
			r.Put("/contacts/{id}", contactHandler.Update)
			r.Delete("/contacts/{id}", contactHandler.Delete)
		})
	})

	// Health check endpoint
	r.Get("/healthz", app.healthCheck)

	return r
}

// healthCheck reports whether the server can reach its backing services.
func (app *application) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := app.db.PingContext(r.Context()); err != nil {
		app.logger.Error("Health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unreachable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
