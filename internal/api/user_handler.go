package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fastcontacts/contacts-api/internal/api/shared"
	"github.com/fastcontacts/contacts-api/internal/platform/logger"
	"github.com/fastcontacts/contacts-api/internal/platform/objectstore"
	"github.com/fastcontacts/contacts-api/internal/service"
)

// avatarFormField is the multipart form field carrying the avatar image.
const avatarFormField = "file"

// UserHandler handles requests about the authenticated user's own account.
type UserHandler struct {
	userService    service.UserService
	avatarStore    *objectstore.AvatarStore
	maxAvatarBytes int64
	logger         *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	userService service.UserService,
	avatarStore *objectstore.AvatarStore,
	maxAvatarBytes int64,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}

	return &UserHandler{
		userService:    userService,
		avatarStore:    avatarStore,
		maxAvatarBytes: maxAvatarBytes,
		logger:         logger.With(slog.String("component", "user_handler")),
	}
}

// Me handles GET /users/me requests.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// UploadAvatar handles POST /users/avatar requests. The avatar is sent as a
// multipart form file; the stored public URL replaces any previous avatar.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	// Cap the whole request body slightly above the avatar limit so a
	// too-large upload fails here instead of buffering unbounded input.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes+1024)

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Avatar exceeds maximum size")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing avatar file")
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")

	avatarURL, err := h.avatarStore.Upload(r.Context(), userID, contentType, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, objectstore.ErrUnsupportedType):
			shared.RespondWithError(w, r, http.StatusUnsupportedMediaType, "Unsupported avatar content type")
		case errors.Is(err, objectstore.ErrTooLarge):
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Avatar exceeds maximum size")
		default:
			shared.RespondWithErrorAndLog(w, r,
				http.StatusInternalServerError, "Failed to store avatar", err)
		}
		return
	}

	user, err := h.userService.SetAvatarURL(r.Context(), userID, avatarURL)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("avatar updated",
		slog.String("user_id", userID.String()),
		slog.String("avatar_url", avatarURL))
	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}
