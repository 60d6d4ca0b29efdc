// Package receipts implements the payment ledger. Receipts are the single
// source of truth for invoice payment state: every receipt mutation
// recomputes the owning invoice's paid_amount and status in the same
// transaction.
package receipts

import "time"

// Receipt records a payment applied to an invoice of the same company.
type Receipt struct {
	ID               int64     `json:"id"`
	CompanyID        int64     `json:"company_id"`
	InvoiceID        int64     `json:"invoice_id"`
	InvoiceNumber    *string   `json:"invoice_number,omitempty"`
	ClientName       *string   `json:"client_name,omitempty"`
	ReceiptNumber    string    `json:"receipt_number"`
	Amount           float64   `json:"amount"`
	PaymentMethod    string    `json:"payment_method"`
	PaymentReference *string   `json:"payment_reference,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
