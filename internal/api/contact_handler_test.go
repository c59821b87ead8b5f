package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastcontacts/contacts-api/internal/api/shared"
	"github.com/fastcontacts/contacts-api/internal/domain"
	"github.com/fastcontacts/contacts-api/internal/service"
	"github.com/fastcontacts/contacts-api/internal/store"
)

// stubContactService lets each test plug in just the methods it exercises.
type stubContactService struct {
	createFn    func(ctx context.Context, ownerID uuid.UUID, fields service.ContactFields) (*domain.Contact, error)
	getFn       func(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Contact, error)
	listFn      func(ctx context.Context, ownerID uuid.UUID, params store.ListContactsParams) ([]*domain.Contact, error)
	birthdaysFn func(ctx context.Context, ownerID uuid.UUID, days int, params store.ListContactsParams) ([]*domain.Contact, error)
	updateFn    func(ctx context.Context, ownerID uuid.UUID, id int64, fields service.ContactFields) (*domain.Contact, error)
	deleteFn    func(ctx context.Context, ownerID uuid.UUID, id int64) error
}

func (s *stubContactService) Create(ctx context.Context, ownerID uuid.UUID, fields service.ContactFields) (*domain.Contact, error) {
	return s.createFn(ctx, ownerID, fields)
}

func (s *stubContactService) Get(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Contact, error) {
	return s.getFn(ctx, ownerID, id)
}

func (s *stubContactService) List(ctx context.Context, ownerID uuid.UUID, params store.ListContactsParams) ([]*domain.Contact, error) {
	return s.listFn(ctx, ownerID, params)
}

func (s *stubContactService) ListUpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, days int, params store.ListContactsParams) ([]*domain.Contact, error) {
	return s.birthdaysFn(ctx, ownerID, days, params)
}

func (s *stubContactService) Update(ctx context.Context, ownerID uuid.UUID, id int64, fields service.ContactFields) (*domain.Contact, error) {
	return s.updateFn(ctx, ownerID, id, fields)
}

func (s *stubContactService) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return s.deleteFn(ctx, ownerID, id)
}

// contactRouter mounts the handler behind the same routes the server uses,
// with the given user id injected the way the auth middleware would.
func contactRouter(svc service.ContactService, userID uuid.UUID) http.Handler {
	h := NewContactHandler(svc, slog.Default())

	r := chi.NewRouter()
	if userID != uuid.Nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := shared.SetUserID(req.Context(), userID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	r.Get("/contacts", h.List)
	r.Post("/contacts", h.Create)
	r.Get("/contacts/birthdays", h.Birthdays)
	r.Get("/contacts/{id}", h.Get)
	r.Put("/contacts/{id}", h.Update)
	r.Delete("/contacts/{id}", h.Delete)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleContact(ownerID uuid.UUID) *domain.Contact {
	now := time.Now().UTC()
	birthday := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)
	return &domain.Contact{
		ID:        7,
		OwnerID:   ownerID,
		Name:      "Ada",
		Surname:   "Lovelace",
		Email:     "ada@example.com",
		Birthday:  &birthday,
		Favorite:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestContactHandlerList(t *testing.T) {
	owner := uuid.New()

	t.Run("defaults and search term forwarded", func(t *testing.T) {
		svc := &stubContactService{
			listFn: func(ctx context.Context, ownerID uuid.UUID, params store.ListContactsParams) ([]*domain.Contact, error) {
				assert.Equal(t, owner, ownerID)
				assert.Equal(t, 20, params.Limit)
				assert.Equal(t, 0, params.Offset)
				assert.Equal(t, "ada", params.Search)
				return []*domain.Contact{sampleContact(owner)}, nil
			},
		}

		w := doRequest(t, contactRouter(svc, owner), http.MethodGet, "/contacts?search=ada", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp []ContactResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "Ada", resp[0].Name)
		assert.Equal(t, "1990-03-14", resp[0].Birthday)
	})

	t.Run("pagination params clamped to bounds", func(t *testing.T) {
		svc := &stubContactService{
			listFn: func(ctx context.Context, ownerID uuid.UUID, params store.ListContactsParams) ([]*domain.Contact, error) {
				assert.Equal(t, 100, params.Limit)
				assert.Equal(t, 40, params.Offset)
				return []*domain.Contact{}, nil
			},
		}

		w := doRequest(t, contactRouter(svc, owner), http.MethodGet, "/contacts?limit=5000&offset=40", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("missing user identity returns unauthorized", func(t *testing.T) {
		w := doRequest(t, contactRouter(&stubContactService{}, uuid.Nil), http.MethodGet, "/contacts", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestContactHandlerBirthdays(t *testing.T) {
	owner := uuid.New()

	svc := &stubContactService{
		birthdaysFn: func(ctx context.Context, ownerID uuid.UUID, days int, params store.ListContactsParams) ([]*domain.Contact, error) {
			assert.Equal(t, 30, days)
			return []*domain.Contact{sampleContact(owner)}, nil
		},
	}

	w := doRequest(t, contactRouter(svc, owner), http.MethodGet, "/contacts/birthdays?days=30", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []ContactResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
}

func TestContactHandlerCreate(t *testing.T) {
	owner := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := &stubContactService{
			createFn: func(ctx context.Context, ownerID uuid.UUID, fields service.ContactFields) (*domain.Contact, error) {
				assert.Equal(t, owner, ownerID)
				assert.Equal(t, "Ada", fields.Name)
				require.NotNil(t, fields.Birthday)
				assert.Equal(t, "1990-03-14", fields.Birthday.Format("2006-01-02"))
				return sampleContact(owner), nil
			},
		}

		w := doRequest(t, contactRouter(svc, owner), http.MethodPost, "/contacts", ContactRequest{
			Name:     "Ada",
			Surname:  "Lovelace",
			Birthday: "1990-03-14",
		})

		require.Equal(t, http.StatusCreated, w.Code)

		var resp ContactResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.ID)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		w := doRequest(t, contactRouter(&stubContactService{}, owner), http.MethodPost, "/contacts", ContactRequest{
			Surname: "Lovelace",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("malformed birthday rejected", func(t *testing.T) {
		w := doRequest(t, contactRouter(&stubContactService{}, owner), http.MethodPost, "/contacts", ContactRequest{
			Name:     "Ada",
			Birthday: "14-03-1990",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestContactHandlerGet(t *testing.T) {
	owner := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := &stubContactService{
			getFn: func(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Contact, error) {
				assert.Equal(t, int64(7), id)
				return sampleContact(owner), nil
			},
		}

		w := doRequest(t, contactRouter(svc, owner), http.MethodGet, "/contacts/7", nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("foreign or missing contact returns not found", func(t *testing.T) {
		svc := &stubContactService{
			getFn: func(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Contact, error) {
				return nil, store.ErrContactNotFound
			},
		}

		w := doRequest(t, contactRouter(svc, owner), http.MethodGet, "/contacts/7", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id returns bad request", func(t *testing.T) {
		w := doRequest(t, contactRouter(&stubContactService{}, owner), http.MethodGet, "/contacts/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestContactHandlerUpdate(t *testing.T) {
	owner := uuid.New()

	t.Run("replaces fields", func(t *testing.T) {
		svc := &stubContactService{
			updateFn: func(ctx context.Context, ownerID uuid.UUID, id int64, fields service.ContactFields) (*domain.Contact, error) {
				assert.Equal(t, int64(7), id)
				assert.Equal(t, "Countess", fields.Surname)
				updated := sampleContact(owner)
				updated.Surname = "Countess"
				return updated, nil
			},
		}

		w := doRequest(t, contactRouter(svc, owner), http.MethodPut, "/contacts/7", ContactRequest{
			Name:    "Ada",
			Surname: "Countess",
		})

		require.Equal(t, http.StatusOK, w.Code)

		var resp ContactResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Countess", resp.Surname)
	})

	t.Run("foreign contact returns not found", func(t *testing.T) {
		svc := &stubContactService{
			updateFn: func(ctx context.Context, ownerID uuid.UUID, id int64, fields service.ContactFields) (*domain.Contact, error) {
				return nil, store.ErrContactNotFound
			},
		}

		w := doRequest(t, contactRouter(svc, owner), http.MethodPut, "/contacts/7", ContactRequest{Name: "Ada"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestContactHandlerDelete(t *testing.T) {
	owner := uuid.New()

	t.Run("no content on success", func(t *testing.T) {
		svc := &stubContactService{
			deleteFn: func(ctx context.Context, ownerID uuid.UUID, id int64) error {
				assert.Equal(t, int64(7), id)
				return nil
			},
		}

		w := doRequest(t, contactRouter(svc, owner), http.MethodDelete, "/contacts/7", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("foreign contact returns not found", func(t *testing.T) {
		svc := &stubContactService{
			deleteFn: func(ctx context.Context, ownerID uuid.UUID, id int64) error {
				return store.ErrContactNotFound
			},
		}

		w := doRequest(t, contactRouter(svc, owner), http.MethodDelete, "/contacts/7", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
