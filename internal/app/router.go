package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Sibogoje/crm/internal/auth"
	"github.com/Sibogoje/crm/internal/clients"
	"github.com/Sibogoje/crm/internal/invoices"
	"github.com/Sibogoje/crm/internal/items"
	"github.com/Sibogoje/crm/internal/quotes"
	"github.com/Sibogoje/crm/internal/receipts"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Tokens         *auth.TokenManager
	AuthHandler    *auth.Handler
	ClientHandler  *clients.Handler
	ItemHandler    *items.Handler
	QuoteHandler   *quotes.Handler
	InvoiceHandler *invoices.Handler
	ReceiptHandler *receipts.Handler
}

// NewRouter constructs the chi.Router. Everything except /healthz and the
// login endpoint sits behind the bearer token check.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(params.Logger, params.Config) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.Tokens.RequireAuth)
		r.Route("/clients", params.ClientHandler.MountRoutes)
		r.Route("/items", params.ItemHandler.MountRoutes)
		r.Route("/quotes", params.QuoteHandler.MountRoutes)
		r.Route("/invoices", params.InvoiceHandler.MountRoutes)
		r.Route("/receipts", params.ReceiptHandler.MountRoutes)
	})

	return r
}
