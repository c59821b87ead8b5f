package postgres

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
	"github.com/fastcontacts/contacts-api/internal/platform/logger"
	"github.com/fastcontacts/contacts-api/internal/store"
)

// contactColumns is the column list shared by all contact queries.
const contactColumns = `id, owner_id, name, surname, email, phone, birthday, notes, favorite, created_at, updated_at`

// PostgresContactStore implements the store.ContactStore interface
// using a PostgreSQL database as the storage backend.
//
// Owner scoping happens at the SQL level: every query carries an
// owner_id predicate, so a contact id belonging to another user is
// indistinguishable from one that does not exist.
type PostgresContactStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresContactStore creates a new PostgreSQL implementation of the
// ContactStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresContactStore(db store.DBTX, logger *slog.Logger) *PostgresContactStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresContactStore{
		db:     db,
		logger: logger.With(slog.String("component", "contact_store")),
	}
}

// Ensure PostgresContactStore implements store.ContactStore interface
var _ store.ContactStore = (*PostgresContactStore)(nil)

// Create implements store.ContactStore.Create
// The database assigns the contact ID, which is written back to the entity.
func (s *PostgresContactStore) Create(ctx context.Context, contact *domain.Contact) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := contact.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO contacts (owner_id, name, surname, email, phone, birthday, notes, favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		contact.OwnerID,
		contact.Name,
		contact.Surname,
		contact.Email,
		contact.Phone,
		contact.Birthday,
		contact.Notes,
		contact.Favorite,
		contact.CreatedAt,
		contact.UpdatedAt,
	).Scan(&contact.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("owner does not exist during contact creation",
				slog.String("owner_id", contact.OwnerID.String()))
			return fmt.Errorf("%w: owner %s not found", store.ErrInvalidEntity, contact.OwnerID)
		}

		log.Error("failed to create contact",
			slog.String("error", err.Error()),
			slog.String("owner_id", contact.OwnerID.String()))
		return MapError(err)
	}

	log.Info("contact created",
		slog.Int64("contact_id", contact.ID),
		slog.String("owner_id", contact.OwnerID.String()))
	return nil
}

// GetByID implements store.ContactStore.GetByID
func (s *PostgresContactStore) GetByID(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE id = $1 AND owner_id = $2
	`
	return scanContact(s.db.QueryRowContext(ctx, query, id, ownerID))
}

// List implements store.ContactStore.List
// When params.Search is set, results are restricted to contacts whose name,
// surname or email contains the term (case-insensitive).
func (s *PostgresContactStore) List(ctx context.Context, ownerID uuid.UUID, params store.ListContactsParams) ([]*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR surname ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY id
		LIMIT $3 OFFSET $4
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID, escapeLikePattern(params.Search), params.Limit, params.Offset)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectContacts(rows)
}

// likeEscaper escapes LIKE/ILIKE metacharacters so a search term matches
// literally instead of acting as a wildcard.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLikePattern(term string) string {
	return likeEscaper.Replace(term)
}

// ListUpcomingBirthdays implements store.ContactStore.ListUpcomingBirthdays
// The comparison is on day-of-year so that windows crossing a year boundary
// still match. Off-by-one around leap days is accepted.
func (s *PostgresContactStore) ListUpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, days int, params store.ListContactsParams) ([]*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		  AND birthday IS NOT NULL
		  AND ((EXTRACT(DOY FROM birthday)::int - EXTRACT(DOY FROM CURRENT_DATE)::int + 366) % 366) <= $2
		ORDER BY ((EXTRACT(DOY FROM birthday)::int - EXTRACT(DOY FROM CURRENT_DATE)::int + 366) % 366), id
		LIMIT $3 OFFSET $4
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID, days, params.Limit, params.Offset)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectContacts(rows)
}

// Update implements store.ContactStore.Update
// All mutable fields are replaced; the owner predicate keeps foreign ids
// indistinguishable from missing ones.
func (s *PostgresContactStore) Update(ctx context.Context, contact *domain.Contact) error {
	if err := contact.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE contacts
		SET name = $3, surname = $4, email = $5, phone = $6, birthday = $7, notes = $8, favorite = $9, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		contact.ID,
		contact.OwnerID,
		contact.Name,
		contact.Surname,
		contact.Email,
		contact.Phone,
		contact.Birthday,
		contact.Notes,
		contact.Favorite,
	)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "contact"); err != nil {
		return fmt.Errorf("%w: %v", store.ErrContactNotFound, err)
	}

	contact.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete implements store.ContactStore.Delete
func (s *PostgresContactStore) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM contacts
		WHERE id = $1 AND owner_id = $2
	`
	result, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "contact"); err != nil {
		return fmt.Errorf("%w: %v", store.ErrContactNotFound, err)
	}

	log.Info("contact deleted",
		slog.Int64("contact_id", id),
		slog.String("owner_id", ownerID.String()))
	return nil
}

// WithTx implements store.ContactStore.WithTx
func (s *PostgresContactStore) WithTx(tx *sql.Tx) store.ContactStore {
	return &PostgresContactStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanContact maps a single contact row to a domain.Contact.
func scanContact(row *sql.Row) (*domain.Contact, error) {
	var contact domain.Contact
	var surname, email, phone, notes sql.NullString
	var birthday sql.NullTime

	err := row.Scan(
		&contact.ID,
		&contact.OwnerID,
		&contact.Name,
		&surname,
		&email,
		&phone,
		&birthday,
		&notes,
		&contact.Favorite,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %v", store.ErrContactNotFound, err)
		}
		return nil, MapError(err)
	}

	applyNullable(&contact, surname, email, phone, notes, birthday)
	return &contact, nil
}

// collectContacts drains rows into a slice of contacts.
func collectContacts(rows *sql.Rows) ([]*domain.Contact, error) {
	contacts := make([]*domain.Contact, 0)

	for rows.Next() {
		var contact domain.Contact
		var surname, email, phone, notes sql.NullString
		var birthday sql.NullTime

		err := rows.Scan(
			&contact.ID,
			&contact.OwnerID,
			&contact.Name,
			&surname,
			&email,
			&phone,
			&birthday,
			&notes,
			&contact.Favorite,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}

		applyNullable(&contact, surname, email, phone, notes, birthday)
		contacts = append(contacts, &contact)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return contacts, nil
}

func applyNullable(contact *domain.Contact, surname, email, phone, notes sql.NullString, birthday sql.NullTime) {
	contact.Surname = surname.String
	contact.Email = email.String
	contact.Phone = phone.String
	contact.Notes = notes.String
	if birthday.Valid {
		t := birthday.Time
		contact.Birthday = &t
	}
}
