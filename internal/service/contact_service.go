package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fastcontacts/contacts-api/internal/domain"
	"github.com/fastcontacts/contacts-api/internal/store"
)

// ContactFields carries the caller-editable fields of a contact.
type ContactFields struct {
	Name     string
	Surname  string
	Email    string
	Phone    string
	Birthday *time.Time
	Notes    string
	Favorite bool
}

// ContactService provides owner-scoped contact management. Reads pass
// straight through to the store; every write runs in its own transaction.
type ContactService interface {
	Create(ctx context.Context, ownerID uuid.UUID, fields ContactFields) (*domain.Contact, error)
	Get(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Contact, error)
	List(ctx context.Context, ownerID uuid.UUID, params store.ListContactsParams) ([]*domain.Contact, error)
	ListUpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, days int, params store.ListContactsParams) ([]*domain.Contact, error)
	Update(ctx context.Context, ownerID uuid.UUID, id int64, fields ContactFields) (*domain.Contact, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id int64) error
}

// ContactServiceImpl implements the ContactService interface.
type ContactServiceImpl struct {
	contactStore store.ContactStore
	db           *sql.DB
	logger       *slog.Logger
}

// Ensure ContactServiceImpl implements ContactService interface
var _ ContactService = (*ContactServiceImpl)(nil)

// NewContactService creates a new ContactService.
func NewContactService(contactStore store.ContactStore, db *sql.DB, logger *slog.Logger) *ContactServiceImpl {
	return &ContactServiceImpl{
		contactStore: contactStore,
		db:           db,
		logger:       logger.With("component", "contact_service"),
	}
}

// Create builds a contact from the given fields and persists it.
func (s *ContactServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, fields ContactFields) (*domain.Contact, error) {
	contact, err := domain.NewContact(ownerID, fields.Name)
	if err != nil {
		return nil, err
	}
	applyFields(contact, fields)
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.contactStore.WithTx(tx).Create(ctx, contact)
	})
	if err != nil {
		return nil, err
	}

	return contact, nil
}

// Get retrieves a single contact within the owner's scope.
func (s *ContactServiceImpl) Get(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Contact, error) {
	return s.contactStore.GetByID(ctx, ownerID, id)
}

// List returns the owner's contacts, paginated and optionally filtered.
func (s *ContactServiceImpl) List(ctx context.Context, ownerID uuid.UUID, params store.ListContactsParams) ([]*domain.Contact, error) {
	return s.contactStore.List(ctx, ownerID, params)
}

// ListUpcomingBirthdays returns the owner's contacts with a birthday in the
// next `days` days.
func (s *ContactServiceImpl) ListUpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, days int, params store.ListContactsParams) ([]*domain.Contact, error) {
	return s.contactStore.ListUpcomingBirthdays(ctx, ownerID, days, params)
}

// Update replaces a contact's fields within the owner's scope and returns
// the updated entity.
func (s *ContactServiceImpl) Update(ctx context.Context, ownerID uuid.UUID, id int64, fields ContactFields) (*domain.Contact, error) {
	contact := &domain.Contact{
		ID:      id,
		OwnerID: ownerID,
	}
	applyFields(contact, fields)
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.contactStore.WithTx(tx).Update(ctx, contact)
	})
	if err != nil {
		return nil, err
	}

	return s.contactStore.GetByID(ctx, ownerID, id)
}

// Delete removes a contact within the owner's scope.
func (s *ContactServiceImpl) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.contactStore.WithTx(tx).Delete(ctx, ownerID, id)
	})
}

func applyFields(contact *domain.Contact, fields ContactFields) {
	contact.Name = fields.Name
	contact.Surname = fields.Surname
	contact.Email = fields.Email
	contact.Phone = fields.Phone
	contact.Birthday = fields.Birthday
	contact.Notes = fields.Notes
	contact.Favorite = fields.Favorite
}
