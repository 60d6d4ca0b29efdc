package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/Sibogoje/crm/internal/platform/httpx"
	"github.com/Sibogoje/crm/internal/quotes"
	"github.com/Sibogoje/crm/internal/shared"
)

// QuoteSource is the slice of the quote engine the invoice engine needs
// for derivation. The normalized quote item rows are read, never the
// quote's embedded representation.
type QuoteSource interface {
	Get(ctx context.Context, id, companyID int64) (*quotes.Quote, error)
	ListItemsEnriched(ctx context.Context, quoteID int64) ([]quotes.EnrichedItem, error)
}

// Service owns invoice business rules: numbering, quote derivation and the
// guard that keeps paid_amount out of client hands.
type Service struct {
	repo    Repository
	quotes  QuoteSource
	taxRate float64
	dueDays int
	now     func() time.Time
}

// NewService builds the invoice service. taxRate is the fraction applied
// when deriving an invoice from a quote; dueDays sets the derived due date.
func NewService(repo Repository, quoteSource QuoteSource, taxRate float64, dueDays int) *Service {
	return &Service{
		repo:    repo,
		quotes:  quoteSource,
		taxRate: taxRate,
		dueDays: dueDays,
		now:     time.Now,
	}
}

// List returns all invoices for the tenant, newest first.
func (s *Service) List(ctx context.Context, companyID int64) ([]Invoice, error) {
	return s.repo.List(ctx, companyID)
}

// Get returns a single tenant-scoped invoice.
func (s *Service) Get(ctx context.Context, id, companyID int64) (*Invoice, error) {
	return s.repo.Get(ctx, id, companyID)
}

func buildItems(reqs []InvoiceItemRequest) []InvoiceItem {
	items := make([]InvoiceItem, 0, len(reqs))
	for _, lr := range reqs {
		quantity := 1.0
		if lr.Quantity != nil {
			quantity = *lr.Quantity
		}
		description := ""
		if lr.Description != nil {
			description = *lr.Description
		}
		items = append(items, InvoiceItem{
			ItemID:      lr.ItemID,
			ItemName:    lr.ItemName,
			Description: description,
			UnitPrice:   lr.UnitPrice,
			Quantity:    quantity,
			TotalPrice:  lr.TotalPrice,
		})
	}
	return items
}

// Create persists a new invoice. The number is assigned from the company
// sequence when absent; paid_amount always starts at zero.
func (s *Service) Create(ctx context.Context, companyID int64, req CreateInvoiceRequest) (*Invoice, error) {
	total, err := req.NormalizedTotal()
	if err != nil {
		return nil, err
	}

	status := StatusDraft
	if req.Status != nil {
		status = *req.Status
	}

	var invoiceID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number := ""
		if req.InvoiceNumber != nil && *req.InvoiceNumber != "" {
			number = *req.InvoiceNumber
		} else {
			n, err := repo.NextNumber(ctx, companyID, s.now())
			if err != nil {
				return err
			}
			number = n
		}

		id, err := repo.Insert(ctx, Invoice{
			CompanyID:     companyID,
			ClientID:      req.ClientID,
			QuoteID:       req.QuoteID,
			InvoiceNumber: number,
			InvoiceDate:   req.InvoiceDate,
			DueDate:       req.DueDate,
			Status:        status,
			Subtotal:      *req.Subtotal,
			TaxAmount:     *req.TaxAmount,
			Total:         total,
			PaidAmount:    0,
			Notes:         req.Notes,
			Items:         buildItems(req.Items),
		})
		if err != nil {
			return err
		}
		invoiceID = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	return s.repo.Get(ctx, invoiceID, companyID)
}

// CreateFromQuote derives an invoice from a tenant-scoped quote. Line items
// are rebuilt from the quote's normalized item rows, enriched with the
// catalog name and description where the line references a catalog item.
// The configured tax rate is applied to the recomputed subtotal and the due
// date is set dueDays from now. The quote itself is not mutated or locked.
func (s *Service) CreateFromQuote(ctx context.Context, quoteID, companyID int64) (*Invoice, error) {
	quote, err := s.quotes.Get(ctx, quoteID, companyID)
	if err != nil {
		return nil, err
	}

	lines, err := s.quotes.ListItemsEnriched(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("derive invoice: %w", err)
	}

	var subtotal float64
	itemReqs := make([]InvoiceItemRequest, 0, len(lines))
	for _, line := range lines {
		name := "Custom Item"
		if line.CatalogName != nil && *line.CatalogName != "" {
			name = *line.CatalogName
		}
		description := ""
		if line.CatalogDescription != nil {
			description = *line.CatalogDescription
		}
		totalPrice := line.UnitPrice * line.Quantity
		subtotal += totalPrice

		quantity := line.Quantity
		itemReqs = append(itemReqs, InvoiceItemRequest{
			ItemID:      line.ItemID,
			ItemName:    name,
			Description: &description,
			UnitPrice:   line.UnitPrice,
			Quantity:    &quantity,
			TotalPrice:  totalPrice,
		})
	}

	taxAmount := subtotal * s.taxRate
	total := subtotal + taxAmount
	dueDate := shared.NewDate(s.now()).AddDays(s.dueDays)
	invoiceDate := shared.NewDate(s.now())

	return s.Create(ctx, companyID, CreateInvoiceRequest{
		ClientID:    quote.ClientID,
		QuoteID:     &quote.ID,
		InvoiceDate: invoiceDate,
		DueDate:     &dueDate,
		Subtotal:    &subtotal,
		TaxAmount:   &taxAmount,
		Total:       &total,
		Notes:       quote.Notes,
		Items:       itemReqs,
	})
}

// Update overwrites the invoice's scalar fields and items. Payment state
// stays engine-owned: paid_amount is never touched here, and the status is
// rederived from the stored paid_amount against the new total, so a
// submitted status is ignored and a total change cannot strand a stale one.
func (s *Service) Update(ctx context.Context, id, companyID int64, req UpdateInvoiceRequest) (*Invoice, error) {
	existing, err := s.repo.Get(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	total, err := req.NormalizedTotal()
	if err != nil {
		return nil, err
	}

	status := StatusForPayment(existing.PaidAmount, total)
	number := existing.InvoiceNumber
	if req.InvoiceNumber != nil && *req.InvoiceNumber != "" {
		number = *req.InvoiceNumber
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.UpdateHeader(ctx, Invoice{
			ID:            id,
			CompanyID:     companyID,
			ClientID:      req.ClientID,
			QuoteID:       existing.QuoteID,
			InvoiceNumber: number,
			InvoiceDate:   req.InvoiceDate,
			DueDate:       req.DueDate,
			Status:        status,
			Subtotal:      *req.Subtotal,
			TaxAmount:     *req.TaxAmount,
			Total:         total,
			Notes:         req.Notes,
			Items:         buildItems(req.Items),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	return s.repo.Get(ctx, id, companyID)
}

// Delete removes a tenant-scoped invoice. Deletion is rejected while
// receipts reference it: receipts are the payment record and must be
// removed explicitly first. The check and the delete share one transaction
// so a receipt posted in between cannot slip past the guard.
func (s *Service) Delete(ctx context.Context, id, companyID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := repo.Get(ctx, id, companyID); err != nil {
			return err
		}

		count, err := repo.CountReceipts(ctx, id)
		if err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: invoice has %d receipt(s); delete them first", httpx.ErrConflict, count)
		}

		return repo.Delete(ctx, id, companyID)
	})
}
