package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fastcontacts/contacts-api/internal/api/shared"
	"github.com/fastcontacts/contacts-api/internal/platform/logger"
	"github.com/fastcontacts/contacts-api/internal/service"
	"github.com/fastcontacts/contacts-api/internal/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	defaultBirthdayWindowDays = 7
	maxBirthdayWindowDays     = 366
)

// ContactHandler handles contact-related HTTP requests.
// Every operation is scoped to the authenticated user; a contact owned by
// someone else is indistinguishable from one that does not exist.
type ContactHandler struct {
	contactService service.ContactService
	validator      *validator.Validate
	logger         *slog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService service.ContactService, logger *slog.Logger) *ContactHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ContactHandler")
	}

	return &ContactHandler{
		contactService: contactService,
		validator:      validator.New(),
		logger:         logger.With(slog.String("component", "contact_handler")),
	}
}

// List handles GET /contacts requests. Supports limit/offset pagination and
// an optional search term matched against name, surname, and email.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	params := store.ListContactsParams{
		Limit:  queryInt(r, "limit", defaultPageSize, 1, maxPageSize),
		Offset: queryInt(r, "offset", 0, 0, 1<<30),
		Search: r.URL.Query().Get("search"),
	}

	contacts, err := h.contactService.List(r.Context(), userID, params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to list contacts", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewContactListResponse(contacts))
}

// Birthdays handles GET /contacts/birthdays requests, returning contacts
// whose birthday falls within the next `days` days (default 7).
func (h *ContactHandler) Birthdays(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	days := queryInt(r, "days", defaultBirthdayWindowDays, 1, maxBirthdayWindowDays)
	params := store.ListContactsParams{
		Limit:  queryInt(r, "limit", defaultPageSize, 1, maxPageSize),
		Offset: queryInt(r, "offset", 0, 0, 1<<30),
	}

	contacts, err := h.contactService.ListUpcomingBirthdays(r.Context(), userID, days, params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to list upcoming birthdays", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewContactListResponse(contacts))
}

// Create handles POST /contacts requests.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	fields, ok := h.decodeContactRequest(w, r)
	if !ok {
		return
	}

	contact, err := h.contactService.Create(r.Context(), userID, fields)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("contact created",
		slog.String("user_id", userID.String()),
		slog.Int64("contact_id", contact.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, NewContactResponse(contact))
}

// Get handles GET /contacts/{id} requests.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, contactID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	contact, err := h.contactService.Get(r.Context(), userID, contactID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewContactResponse(contact))
}

// Update handles PUT /contacts/{id} requests. The payload fully replaces the
// contact's editable fields.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, contactID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	fields, ok := h.decodeContactRequest(w, r)
	if !ok {
		return
	}

	contact, err := h.contactService.Update(r.Context(), userID, contactID, fields)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewContactResponse(contact))
}

// Delete handles DELETE /contacts/{id} requests.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, contactID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.contactService.Delete(r.Context(), userID, contactID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("contact deleted",
		slog.String("user_id", userID.String()),
		slog.Int64("contact_id", contactID))
	w.WriteHeader(http.StatusNoContent)
}

// decodeContactRequest parses and validates a contact payload, writing an
// error response on failure.
func (h *ContactHandler) decodeContactRequest(
	w http.ResponseWriter,
	r *http.Request,
) (service.ContactFields, bool) {
	var req ContactRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return service.ContactFields{}, false
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, SanitizeValidationError(err))
		return service.ContactFields{}, false
	}

	fields := service.ContactFields{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Phone:    req.Phone,
		Notes:    req.Notes,
		Favorite: req.Favorite,
	}

	if req.Birthday != "" {
		birthday, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Invalid birthday: expected YYYY-MM-DD")
			return service.ContactFields{}, false
		}
		fields.Birthday = &birthday
	}

	return fields, true
}
