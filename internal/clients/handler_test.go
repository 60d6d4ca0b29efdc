package clients

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sibogoje/crm/internal/platform/httpx"
	"github.com/Sibogoje/crm/internal/shared"
)

type memRepo struct {
	clients map[int64]Client
	nextID  int64
}

func newMemRepo() *memRepo {
	return &memRepo{clients: make(map[int64]Client)}
}

func (m *memRepo) List(ctx context.Context, companyID int64) ([]Client, error) {
	var out []Client
	for _, c := range m.clients {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRepo) Get(ctx context.Context, id, companyID int64) (*Client, error) {
	c, ok := m.clients[id]
	if !ok || c.CompanyID != companyID {
		return nil, httpx.ErrNotFound
	}
	return &c, nil
}

func (m *memRepo) Create(ctx context.Context, companyID int64, req CreateClientRequest) (*Client, error) {
	m.nextID++
	c := Client{
		ID:            m.nextID,
		CompanyID:     companyID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		TaxID:         req.TaxID,
		ClientCompany: req.ClientCompany,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.clients[c.ID] = c
	return &c, nil
}

func (m *memRepo) Update(ctx context.Context, id, companyID int64, req CreateClientRequest) (*Client, error) {
	c, ok := m.clients[id]
	if !ok || c.CompanyID != companyID {
		return nil, httpx.ErrNotFound
	}
	c.Name = req.Name
	c.Email = req.Email
	m.clients[id] = c
	return &c, nil
}

func (m *memRepo) Delete(ctx context.Context, id, companyID int64) error {
	c, ok := m.clients[id]
	if !ok || c.CompanyID != companyID {
		return httpx.ErrNotFound
	}
	delete(m.clients, id)
	return nil
}

func newTestRouter(repo Repository, companyID int64) *chi.Mux {
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), repo)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithIdentity(req.Context(), shared.Identity{UserID: 1, CompanyID: companyID})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/clients", handler.MountRoutes)
	return r
}

func TestCreateAndGetClient(t *testing.T) {
	repo := newMemRepo()
	router := newTestRouter(repo, 1)

	body := `{"name":"Acme Ltd","email":"billing@acme.test"}`
	req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var envelope struct {
		Status string `json:"status"`
		Data   Client `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	assert.Equal(t, "success", envelope.Status)
	assert.Equal(t, int64(1), envelope.Data.CompanyID)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/clients/1", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateClientRequiresName(t *testing.T) {
	router := newTestRouter(newMemRepo(), 1)

	req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(`{"email":"x@y.test"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Missing required field: name")
}

func TestClientTenantIsolation(t *testing.T) {
	repo := newMemRepo()
	repo.clients[1] = Client{ID: 1, CompanyID: 2, Name: "Foreign"}

	router := newTestRouter(repo, 1)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/clients/1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/clients/1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/clients", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"data":[]`)
}
