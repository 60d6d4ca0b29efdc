package quotes

import (
	"context"
	"fmt"
	"time"
)

// Service owns quote business rules: numbering, total computation and the
// replace-all semantics for line items.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the quote service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns all quotes for the tenant, newest first, each with its
// client display name and line items.
func (s *Service) List(ctx context.Context, companyID int64) ([]Quote, error) {
	return s.repo.List(ctx, companyID)
}

// Get returns a single tenant-scoped quote. A quote owned by another
// company is indistinguishable from an absent one.
func (s *Service) Get(ctx context.Context, id, companyID int64) (*Quote, error) {
	return s.repo.Get(ctx, id, companyID)
}

// buildItems converts submitted lines, applying the quantity default.
func buildItems(quoteID int64, reqs []QuoteItemRequest) []QuoteItem {
	items := make([]QuoteItem, 0, len(reqs))
	for _, lr := range reqs {
		quantity := 1.0
		if lr.Quantity != nil {
			quantity = *lr.Quantity
		}
		description := ""
		if lr.Description != nil {
			description = *lr.Description
		}
		items = append(items, QuoteItem{
			QuoteID:     quoteID,
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

// computeTotals resolves subtotal, tax and total from the submitted items
// and optional overrides. Subtotal defaults to the sum of item totals, tax
// to zero, total to subtotal plus tax.
func computeTotals(items []QuoteItemRequest, subtotal, tax, total *float64) (float64, float64, float64) {
	var itemSum float64
	for _, it := range items {
		itemSum += it.TotalPrice
	}

	sub := itemSum
	if subtotal != nil {
		sub = *subtotal
	}
	taxAmount := 0.0
	if tax != nil {
		taxAmount = *tax
	}
	totalAmount := sub + taxAmount
	if total != nil {
		totalAmount = *total
	}
	return sub, taxAmount, totalAmount
}

// Create persists a new quote with its items in one transaction. The quote
// number is assigned from the company sequence when not supplied; the
// claimed number rolls back with the document on failure.
func (s *Service) Create(ctx context.Context, companyID int64, req CreateQuoteRequest) (*Quote, error) {
	status := StatusDraft
	if req.Status != nil {
		status = *req.Status
	}
	subtotal, taxAmount, totalAmount := computeTotals(req.Items, req.Subtotal, req.TaxAmount, req.TotalAmount)

	var quoteID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number := ""
		if req.QuoteNumber != nil && *req.QuoteNumber != "" {
			number = *req.QuoteNumber
		} else {
			n, err := repo.NextNumber(ctx, companyID, s.now())
			if err != nil {
				return err
			}
			number = n
		}

		id, err := repo.Insert(ctx, Quote{
			CompanyID:   companyID,
			ClientID:    req.ClientID,
			QuoteNumber: number,
			QuoteDate:   req.QuoteDate,
			ExpiryDate:  req.ExpiryDate,
			Status:      status,
			Subtotal:    subtotal,
			TaxAmount:   taxAmount,
			TotalAmount: totalAmount,
			Notes:       req.Notes,
		})
		if err != nil {
			return err
		}
		quoteID = id

		for _, item := range buildItems(quoteID, req.Items) {
			if err := repo.InsertItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}

	return s.repo.Get(ctx, quoteID, companyID)
}

// Update overwrites the quote's scalar fields. When items are supplied the
// existing line set is deleted and reinserted wholesale; no diffing.
func (s *Service) Update(ctx context.Context, id, companyID int64, req UpdateQuoteRequest) (*Quote, error) {
	existing, err := s.repo.Get(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	status := StatusDraft
	if req.Status != nil {
		status = *req.Status
	}
	number := existing.QuoteNumber
	if req.QuoteNumber != nil && *req.QuoteNumber != "" {
		number = *req.QuoteNumber
	}

	var subtotal, taxAmount, totalAmount float64
	if req.Items != nil {
		subtotal, taxAmount, totalAmount = computeTotals(req.Items, req.Subtotal, req.TaxAmount, req.TotalAmount)
	} else {
		subtotal, taxAmount, totalAmount = existing.Subtotal, existing.TaxAmount, existing.TotalAmount
		if req.Subtotal != nil {
			subtotal = *req.Subtotal
		}
		if req.TaxAmount != nil {
			taxAmount = *req.TaxAmount
		}
		if req.TotalAmount != nil {
			totalAmount = *req.TotalAmount
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateHeader(ctx, Quote{
			ID:          id,
			CompanyID:   companyID,
			ClientID:    req.ClientID,
			QuoteNumber: number,
			QuoteDate:   req.QuoteDate,
			ExpiryDate:  req.ExpiryDate,
			Status:      status,
			Subtotal:    subtotal,
			TaxAmount:   taxAmount,
			TotalAmount: totalAmount,
			Notes:       req.Notes,
		}); err != nil {
			return err
		}

		if req.Items != nil {
			if err := repo.DeleteItems(ctx, id); err != nil {
				return err
			}
			for _, item := range buildItems(id, req.Items) {
				if err := repo.InsertItem(ctx, item); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update quote: %w", err)
	}

	return s.repo.Get(ctx, id, companyID)
}

// Delete removes the quote and its item rows in one transaction.
func (s *Service) Delete(ctx context.Context, id, companyID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteItems(ctx, id); err != nil {
			return err
		}
		// Rolls the item delete back when the quote is absent or foreign.
		return repo.DeleteQuote(ctx, id, companyID)
	})
}
