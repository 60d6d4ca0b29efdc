package auth

import (
	"net/http"
	"strings"

	"github.com/Sibogoje/crm/internal/platform/httpx"
	"github.com/Sibogoje/crm/internal/shared"
)

// RequireAuth verifies the Authorization bearer token and stores the
// resolved identity in the request context. The 401 message is generic:
// it never reveals which check failed.
func (m *TokenManager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			httpx.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		identity, err := m.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "Access denied. Invalid token.")
			return
		}

		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
