// Package numbering issues human-readable document numbers, unique per
// company per document kind.
//
// Every kind uses the same persisted monotonic counter, claimed atomically
// from the document_sequences table. Counters survive document deletion, so
// a number is never reissued; count-based schemes are deliberately not used.
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Kind selects the document sequence.
type Kind string

const (
	KindQuote   Kind = "QUO"
	KindInvoice Kind = "INV"
	KindReceipt Kind = "REC"
)

// Querier is the subset of pgx used to claim a sequence value. Both a pool
// and a transaction satisfy it; callers inside a transaction pass the
// transaction so the claimed number rolls back with the document.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Next claims the next sequence value for (company, kind) and formats it.
// Quote numbers are QUO-0001 and never reset; invoice and receipt numbers
// carry the year, INV-2025-0001 / REC-2025-0001, with one sequence per
// year. A failed claim fails the enclosing operation: proceeding with a
// guessed number could collide.
func Next(ctx context.Context, q Querier, companyID int64, kind Kind, now time.Time) (string, error) {
	period := ""
	if kind != KindQuote {
		period = now.Format("2006")
	}

	var seq int64
	err := q.QueryRow(ctx, `
		INSERT INTO document_sequences (company_id, doc_type, period, seq)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, companyID, string(kind), period).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("numbering: claim %s sequence: %w", kind, err)
	}

	return Format(kind, period, seq), nil
}

// Format renders a claimed sequence value as a document number.
func Format(kind Kind, period string, seq int64) string {
	if period == "" {
		return fmt.Sprintf("%s-%04d", kind, seq)
	}
	return fmt.Sprintf("%s-%s-%04d", kind, period, seq)
}
