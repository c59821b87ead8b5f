package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact-specific validation errors
var (
	// ErrContactOwnerEmpty is returned when a contact's owner ID is empty or nil.
	ErrContactOwnerEmpty = errors.New("contact owner ID cannot be empty")

	// ErrContactNameEmpty is returned when a contact's name is empty.
	ErrContactNameEmpty = errors.New("contact name cannot be empty")

	// ErrContactNameTooLong is returned when a contact's name exceeds the column limit.
	ErrContactNameTooLong = errors.New("contact name cannot exceed 50 characters")

	// ErrContactNotesTooLong is returned when a contact's notes exceed the column limit.
	ErrContactNotesTooLong = errors.New("contact notes cannot exceed 1000 characters")
)

// Contact represents a single entry in a user's contact list.
// Every contact belongs to exactly one owning user; all access is scoped
// to that owner.
type Contact struct {
	ID        int64      `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Name      string     `json:"name"`
	Surname   string     `json:"surname,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Favorite  bool       `json:"favorite"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewContact creates a new Contact owned by the given user.
// The ID is assigned by the store on insert. Returns an error if
// validation fails.
func NewContact(ownerID uuid.UUID, name string) (*Contact, error) {
	contact := &Contact{
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := contact.Validate(); err != nil {
		return nil, err
	}

	return contact, nil
}

// Validate checks if the Contact has valid data.
// Returns an error if any field fails validation.
func (c *Contact) Validate() error {
	if c.OwnerID == uuid.Nil {
		return ErrContactOwnerEmpty
	}

	if strings.TrimSpace(c.Name) == "" {
		return ErrContactNameEmpty
	}

	if len(c.Name) > 50 {
		return ErrContactNameTooLong
	}

	if len(c.Notes) > 1000 {
		return ErrContactNotesTooLong
	}

	if c.Email != "" && !validEmailFormat(c.Email) {
		return ErrInvalidEmail
	}

	return nil
}
