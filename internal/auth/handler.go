package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sibogoje/crm/internal/platform/httpx"
	"github.com/Sibogoje/crm/internal/shared"
)

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the signed token and the user it represents.
type LoginResponse struct {
	Token string          `json:"token"`
	User  shared.Identity `json:"user"`
}

// Handler serves the auth endpoints.
type Handler struct {
	logger *slog.Logger
	tokens *TokenManager
	users  UserRepository
}

// NewHandler builds the auth handler.
func NewHandler(logger *slog.Logger, tokens *TokenManager, users UserRepository) *Handler {
	return &Handler{logger: logger, tokens: tokens, users: users}
}

// MountRoutes registers auth routes. Login is the only unauthenticated
// endpoint in the API.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(h.tokens.RequireAuth)
		r.Get("/me", h.me)
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Unable to login. Data is incomplete.")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Unable to login. Data is incomplete.")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		httpx.Error(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	identity := shared.Identity{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}

	token, err := h.tokens.Issue(identity)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.JSON(w, http.StatusOK, LoginResponse{Token: token, User: identity})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Access denied. Invalid token.")
		return
	}
	httpx.JSON(w, http.StatusOK, identity)
}
