package receipts

import (
	"context"
	"time"

	"github.com/Sibogoje/crm/internal/invoices"
)

// DefaultPaymentMethod is recorded when a receipt row predates the
// payment_method column.
const DefaultPaymentMethod = "cash"

// Service owns the payment ledger rules. Every mutation locks the owning
// invoice and rewrites its paid_amount and status in the same transaction,
// so the invoice balance never drifts from the sum of ledger adjustments.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the receipt service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the tenant's receipts, optionally filtered to one invoice.
func (s *Service) List(ctx context.Context, companyID int64, invoiceID *int64) ([]Receipt, error) {
	if invoiceID != nil {
		return s.repo.ListByInvoice(ctx, *invoiceID, companyID)
	}
	return s.repo.List(ctx, companyID)
}

// Get returns a single tenant-scoped receipt.
func (s *Service) Get(ctx context.Context, id, companyID int64) (*Receipt, error) {
	return s.repo.Get(ctx, id, companyID)
}

func applyPayment(bal *InvoiceBalance, delta float64) (float64, invoices.InvoiceStatus) {
	paid := bal.Paid + delta
	if paid < 0 {
		paid = 0
	}
	return paid, invoices.StatusForPayment(paid, bal.Total)
}

// Create records a payment. The invoice row is locked first, so the
// not-found check, number assignment, insert and balance write are one
// atomic step; a foreign or missing invoice fails the whole transaction.
func (s *Service) Create(ctx context.Context, companyID int64, req CreateReceiptRequest) (*Receipt, error) {
	method := req.PaymentMethod
	if method == "" {
		method = DefaultPaymentMethod
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		bal, err := tx.LockInvoice(ctx, req.InvoiceID, companyID)
		if err != nil {
			return err
		}

		number := ""
		if req.ReceiptNumber != nil {
			number = *req.ReceiptNumber
		}
		if number == "" {
			number, err = tx.NextNumber(ctx, companyID, s.now())
			if err != nil {
				return err
			}
		}

		id, err = tx.Insert(ctx, Receipt{
			CompanyID:        companyID,
			InvoiceID:        req.InvoiceID,
			ReceiptNumber:    number,
			Amount:           *req.Amount,
			PaymentMethod:    method,
			PaymentReference: req.PaymentReference,
			Notes:            req.Notes,
		})
		if err != nil {
			return err
		}

		paid, status := applyPayment(bal, *req.Amount)
		return tx.SetInvoicePayment(ctx, req.InvoiceID, paid, status)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id, companyID)
}

// Update edits a receipt. When the amount changes the invoice is adjusted
// by the difference under the same lock that guarded the original posting.
func (s *Service) Update(ctx context.Context, id, companyID int64, req UpdateReceiptRequest) (*Receipt, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		rec, err := tx.Get(ctx, id, companyID)
		if err != nil {
			return err
		}
		bal, err := tx.LockInvoice(ctx, rec.InvoiceID, companyID)
		if err != nil {
			return err
		}

		delta := 0.0
		if req.Amount != nil {
			delta = *req.Amount - rec.Amount
			rec.Amount = *req.Amount
		}
		if req.PaymentMethod != nil {
			rec.PaymentMethod = *req.PaymentMethod
		}
		if req.PaymentReference != nil {
			rec.PaymentReference = req.PaymentReference
		}
		if req.Notes != nil {
			rec.Notes = req.Notes
		}
		if err := tx.Update(ctx, *rec); err != nil {
			return err
		}

		if delta == 0 {
			return nil
		}
		paid, status := applyPayment(bal, delta)
		return tx.SetInvoicePayment(ctx, rec.InvoiceID, paid, status)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id, companyID)
}

// Delete removes a receipt and backs its amount out of the invoice.
func (s *Service) Delete(ctx context.Context, id, companyID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		rec, err := tx.Get(ctx, id, companyID)
		if err != nil {
			return err
		}
		bal, err := tx.LockInvoice(ctx, rec.InvoiceID, companyID)
		if err != nil {
			return err
		}
		if err := tx.Delete(ctx, id, companyID); err != nil {
			return err
		}
		paid, status := applyPayment(bal, -rec.Amount)
		return tx.SetInvoicePayment(ctx, rec.InvoiceID, paid, status)
	})
}
