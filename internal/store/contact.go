package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fastcontacts/contacts-api/internal/domain"
)

// ListContactsParams controls pagination and filtering for contact listings.
type ListContactsParams struct {
	Limit  int
	Offset int
	// Search, when non-empty, restricts results to contacts whose name,
	// surname or email contains the term (case-insensitive).
	Search string
}

// ContactStore defines the interface for contact data persistence.
// Every operation is scoped to an owning user: ids belonging to another
// owner behave exactly like missing ids and return ErrContactNotFound.
type ContactStore interface {
	// Create saves a new contact and assigns its ID.
	Create(ctx context.Context, contact *domain.Contact) error

	// GetByID retrieves a contact by id within the owner's scope.
	// Returns ErrContactNotFound if absent or owned by someone else.
	GetByID(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Contact, error)

	// List returns the owner's contacts, paginated and optionally filtered.
	List(ctx context.Context, ownerID uuid.UUID, params ListContactsParams) ([]*domain.Contact, error)

	// ListUpcomingBirthdays returns the owner's contacts whose birthday
	// (month and day) falls within the next `days` days.
	ListUpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, days int, params ListContactsParams) ([]*domain.Contact, error)

	// Update replaces the mutable fields of a contact within the owner's
	// scope. Returns ErrContactNotFound if absent or owned by someone else.
	Update(ctx context.Context, contact *domain.Contact) error

	// Delete removes a contact within the owner's scope.
	// Returns ErrContactNotFound if absent or owned by someone else.
	Delete(ctx context.Context, ownerID uuid.UUID, id int64) error

	// WithTx returns a new ContactStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ContactStore
}
