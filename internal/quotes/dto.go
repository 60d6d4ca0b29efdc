package quotes

import "github.com/Sibogoje/crm/internal/shared"

// QuoteItemRequest is one submitted line. Quantity defaults to 1 when
// omitted; total_price is taken as given.
type QuoteItemRequest struct {
	ItemID      *int64   `json:"item_id,omitempty"`
	ItemName    string   `json:"item_name" validate:"required"`
	Description *string  `json:"description,omitempty"`
	UnitPrice   float64  `json:"unit_price" validate:"gte=0"`
	Quantity    *float64 `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	TotalPrice  float64  `json:"total_price" validate:"gte=0"`
}

// CreateQuoteRequest is the payload for POST /quotes. Subtotal, tax_amount
// and total_amount are optional overrides: when absent, subtotal is the sum
// of item totals, tax is zero and total is subtotal plus tax.
type CreateQuoteRequest struct {
	ClientID    int64              `json:"client_id" validate:"required,gt=0"`
	QuoteNumber *string            `json:"quote_number,omitempty"`
	QuoteDate   shared.Date        `json:"quote_date" validate:"required"`
	ExpiryDate  *shared.Date       `json:"expiry_date,omitempty"`
	Status      *QuoteStatus       `json:"status,omitempty" validate:"omitempty,oneof=draft sent accepted rejected expired"`
	Subtotal    *float64           `json:"subtotal,omitempty" validate:"omitempty,gte=0"`
	TaxAmount   *float64           `json:"tax_amount,omitempty" validate:"omitempty,gte=0"`
	TotalAmount *float64           `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
	Notes       *string            `json:"notes,omitempty"`
	Items       []QuoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateQuoteRequest is the payload for PUT /quotes/{id}: a full overwrite
// of the scalar fields. When items is present the existing line set is
// deleted and replaced wholesale; when absent the lines are left untouched
// and totals keep their stored values unless overridden.
type UpdateQuoteRequest struct {
	ClientID    int64              `json:"client_id" validate:"required,gt=0"`
	QuoteNumber *string            `json:"quote_number,omitempty"`
	QuoteDate   shared.Date        `json:"quote_date" validate:"required"`
	ExpiryDate  *shared.Date       `json:"expiry_date,omitempty"`
	Status      *QuoteStatus       `json:"status,omitempty" validate:"omitempty,oneof=draft sent accepted rejected expired"`
	Subtotal    *float64           `json:"subtotal,omitempty" validate:"omitempty,gte=0"`
	TaxAmount   *float64           `json:"tax_amount,omitempty" validate:"omitempty,gte=0"`
	TotalAmount *float64           `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
	Notes       *string            `json:"notes,omitempty"`
	Items       []QuoteItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}
