package auth

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
	"golang.org/x/crypto/bcrypt"

	"github.com/Sibogoje/crm/internal/platform/httpx"
)

type memUsers struct {
	users map[string]User
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &u, nil
}

func newLoginRouter(t *testing.T) (*chi.Mux, *TokenManager) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &memUsers{users: map[string]User{
		"owner@example.com": {
			ID:           42,
			CompanyID:    7,
			Email:        "owner@example.com",
			PasswordHash: string(hash),
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Role:         "admin",
		},
	}}

	tokens := NewTokenManager("test-secret", time.Hour)
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), tokens, users)

	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, tokens
}

func TestLoginSuccess(t *testing.T) {
	router, _ := newLoginRouter(t)

	body := `{"email":"owner@example.com","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var envelope struct {
		Status string        `json:"status"`
		Data   LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	assert.Equal(t, "success", envelope.Status)
	assert.NotEmpty(t, envelope.Data.Token)
	assert.Equal(t, int64(7), envelope.Data.User.CompanyID)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := newLoginRouter(t)

	body := `{"email":"owner@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials.")
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	router, _ := newLoginRouter(t)

	body := `{"email":"nobody@example.com","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials.")
}

func TestLoginMissingFields(t *testing.T) {
	router, _ := newLoginRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"owner@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Unable to login. Data is incomplete.")
}

func TestMeReturnsTokenIdentity(t *testing.T) {
	router, tokens := newLoginRouter(t)

	token, err := tokens.Issue(testIdentity())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"company_id":7`)
}
