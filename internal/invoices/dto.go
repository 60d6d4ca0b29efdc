package invoices

import (
	"fmt"

	"github.com/Sibogoje/crm/internal/platform/httpx"
	"github.com/Sibogoje/crm/internal/shared"
)

// InvoiceItemRequest is one submitted invoice line.
type InvoiceItemRequest struct {
	ItemID      *int64   `json:"item_id,omitempty"`
	ItemName    string   `json:"item_name" validate:"required"`
	Description *string  `json:"description,omitempty"`
	UnitPrice   float64  `json:"unit_price" validate:"gte=0"`
	Quantity    *float64 `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	TotalPrice  float64  `json:"total_price" validate:"gte=0"`
}

// CreateInvoiceRequest is the payload for POST /invoices. The total may be
// submitted as either "total" or "total_amount"; NormalizedTotal resolves
// the pair. paid_amount is not accepted: new invoices always start at zero.
type CreateInvoiceRequest struct {
	ClientID      int64                `json:"client_id" validate:"required,gt=0"`
	QuoteID       *int64               `json:"quote_id,omitempty"`
	InvoiceNumber *string              `json:"invoice_number,omitempty"`
	InvoiceDate   shared.Date          `json:"invoice_date" validate:"required"`
	DueDate       *shared.Date         `json:"due_date,omitempty"`
	Status        *InvoiceStatus       `json:"status,omitempty" validate:"omitempty,oneof=draft sent paid"`
	Subtotal      *float64             `json:"subtotal" validate:"required"`
	TaxAmount     *float64             `json:"tax_amount" validate:"required"`
	Total         *float64             `json:"total,omitempty"`
	TotalAmount   *float64             `json:"total_amount,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
	Items         []InvoiceItemRequest `json:"items" validate:"required,dive"`
}

// NormalizedTotal returns the invoice total from whichever field carried
// it, preferring "total".
func (r CreateInvoiceRequest) NormalizedTotal() (float64, error) {
	if r.Total != nil {
		return *r.Total, nil
	}
	if r.TotalAmount != nil {
		return *r.TotalAmount, nil
	}
	return 0, fmt.Errorf("%w: Missing required field: total_amount", httpx.ErrValidation)
}

// UpdateInvoiceRequest is the payload for PUT /invoices/{id}: a full
// overwrite of scalars and items. Payment state is engine-owned on this
// path: paid_amount only ever changes through receipt operations, and a
// submitted status is ignored in favor of the derived one.
type UpdateInvoiceRequest = CreateInvoiceRequest

// ConvertQuoteRequest is the payload for POST /invoices/convert-quote.
type ConvertQuoteRequest struct {
	QuoteID int64 `json:"quote_id" validate:"required,gt=0"`
}
