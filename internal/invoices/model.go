// Package invoices implements the invoice engine: direct creation,
// derivation from quotes, and the payment-state fields maintained by the
// receipt ledger.
package invoices

import (
	"time"

	"github.com/Sibogoje/crm/internal/shared"
)

// InvoiceStatus tracks payment progress. It is derived from paid_amount
// against total: draft when nothing is paid, sent when partially paid,
// paid when covered. Receipts drive it in both directions.
type InvoiceStatus string

const (
	StatusDraft InvoiceStatus = "draft"
	StatusSent  InvoiceStatus = "sent"
	StatusPaid  InvoiceStatus = "paid"
)

// StatusForPayment derives the invoice status from its payment state.
func StatusForPayment(paid, total float64) InvoiceStatus {
	switch {
	case paid >= total:
		return StatusPaid
	case paid > 0:
		return StatusSent
	default:
		return StatusDraft
	}
}

// InvoiceItem is one invoice line. Lines live as a JSONB blob on the
// invoice row; there is no normalized table for them.
type InvoiceItem struct {
	ItemID      *int64  `json:"item_id,omitempty"`
	ItemName    string  `json:"item_name"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    float64 `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
}

// Invoice is a bill issued to a client. CompanyID is stored directly on
// the row and is the sole tenant-scoping key. PaidAmount is owned by the
// receipt ledger: it is the clamped sum of the invoice's receipts and is
// never set from client input.
type Invoice struct {
	ID            int64         `json:"id"`
	CompanyID     int64         `json:"company_id"`
	ClientID      int64         `json:"client_id"`
	ClientName    *string       `json:"client_name,omitempty"`
	QuoteID       *int64        `json:"quote_id,omitempty"`
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   shared.Date   `json:"invoice_date"`
	DueDate       *shared.Date  `json:"due_date,omitempty"`
	Status        InvoiceStatus `json:"status"`
	Subtotal      float64       `json:"subtotal"`
	TaxAmount     float64       `json:"tax_amount"`
	Total         float64       `json:"total"`
	PaidAmount    float64       `json:"paid_amount"`
	Notes         *string       `json:"notes,omitempty"`
	Items         []InvoiceItem `json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
