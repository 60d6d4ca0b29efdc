package receipts

// CreateReceiptRequest is the payload for POST /receipts. The receipt number
// is assigned by the ledger when not supplied.
type CreateReceiptRequest struct {
	InvoiceID        int64    `json:"invoice_id" validate:"required,gt=0"`
	ReceiptNumber    *string  `json:"receipt_number,omitempty"`
	Amount           *float64 `json:"amount" validate:"required"`
	PaymentMethod    string   `json:"payment_method" validate:"required"`
	PaymentReference *string  `json:"payment_reference,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

// UpdateReceiptRequest is the payload for PUT /receipts/{id}. Only amount,
// method, reference and notes are mutable; an amount change re-adjusts the
// owning invoice by the delta.
type UpdateReceiptRequest struct {
	Amount           *float64 `json:"amount,omitempty"`
	PaymentMethod    *string  `json:"payment_method,omitempty"`
	PaymentReference *string  `json:"payment_reference,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}
