package invoices

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sibogoje/crm/internal/shared"
)

func newTestRouter(repo Repository, src QuoteSource, companyID int64) *chi.Mux {
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), newTestService(repo, src))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithIdentity(req.Context(), shared.Identity{UserID: 1, CompanyID: companyID})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/invoices", handler.MountRoutes)
	return r
}

func TestCreateInvoiceMissingTaxAmount(t *testing.T) {
	router := newTestRouter(newMemRepo(), &memQuoteSource{}, 1)

	body := `{"client_id":10,"invoice_date":"2025-06-01","subtotal":100,"total":100,"items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Missing required field: tax_amount")
}

func TestGetInvoiceForeignTenantIs404(t *testing.T) {
	repo := newMemRepo()
	repo.invoices[1] = Invoice{ID: 1, CompanyID: 2, ClientID: 10, Total: 100}

	router := newTestRouter(repo, &memQuoteSource{}, 1)

	req := httptest.NewRequest(http.MethodGet, "/invoices/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestConvertQuoteFailureIs400(t *testing.T) {
	router := newTestRouter(newMemRepo(), &memQuoteSource{}, 1)

	body := `{"quote_id":99}`
	req := httptest.NewRequest(http.MethodPost, "/invoices/convert-quote", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Quote not found or conversion failed")
}

func TestDeleteInvoiceWithReceiptsIs409(t *testing.T) {
	repo := newMemRepo()
	repo.invoices[1] = Invoice{ID: 1, CompanyID: 1, ClientID: 10, Total: 100}
	repo.receipts[1] = 1

	router := newTestRouter(repo, &memQuoteSource{}, 1)

	req := httptest.NewRequest(http.MethodDelete, "/invoices/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "receipt")
}
