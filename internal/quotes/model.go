// Package quotes implements the quote engine: quote documents with owned
// line items, computed totals and per-company numbering.
package quotes

import (
	"time"

	"github.com/Sibogoje/crm/internal/shared"
)

// QuoteStatus is a free-form state tag. There is no enforced transition
// graph: clients may set any of these values at any time.
type QuoteStatus string

const (
	StatusDraft    QuoteStatus = "draft"
	StatusSent     QuoteStatus = "sent"
	StatusAccepted QuoteStatus = "accepted"
	StatusRejected QuoteStatus = "rejected"
	StatusExpired  QuoteStatus = "expired"
)

// Quote is a priced offer to a client. The normalized quote_items rows are
// the single source of truth for line items; Items is composed from them on
// every read.
type Quote struct {
	ID          int64        `json:"id"`
	CompanyID   int64        `json:"company_id"`
	ClientID    int64        `json:"client_id"`
	ClientName  *string      `json:"client_name,omitempty"`
	QuoteNumber string       `json:"quote_number"`
	QuoteDate   shared.Date  `json:"quote_date"`
	ExpiryDate  *shared.Date `json:"expiry_date,omitempty"`
	Status      QuoteStatus  `json:"status"`
	Subtotal    float64      `json:"subtotal"`
	TaxAmount   float64      `json:"tax_amount"`
	TotalAmount float64      `json:"total_amount"`
	Notes       *string      `json:"notes,omitempty"`
	Items       []QuoteItem  `json:"items"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// QuoteItem is one quote line. TotalPrice is trusted from the caller, not
// recomputed from unit price and quantity.
type QuoteItem struct {
	ID          int64   `json:"id"`
	QuoteID     int64   `json:"quote_id"`
	ItemID      *int64  `json:"item_id,omitempty"`
	ItemName    string  `json:"item_name"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    float64 `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
}
