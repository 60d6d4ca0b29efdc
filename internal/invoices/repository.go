package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sibogoje/crm/internal/numbering"
	"github.com/Sibogoje/crm/internal/platform/db"
	"github.com/Sibogoje/crm/internal/platform/httpx"
	"github.com/Sibogoje/crm/internal/shared"
)

// Repository persists invoices. Line items are serialized into the JSONB
// items column of the invoice row.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context, companyID int64) ([]Invoice, error)
	Get(ctx context.Context, id, companyID int64) (*Invoice, error)
	Insert(ctx context.Context, inv Invoice) (int64, error)
	UpdateHeader(ctx context.Context, inv Invoice) error
	Delete(ctx context.Context, id, companyID int64) error
	CountReceipts(ctx context.Context, invoiceID int64) (int, error)
	NextNumber(ctx context.Context, companyID int64, now time.Time) (string, error)
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds the pgx-backed invoice repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const invoiceColumns = `i.id, i.company_id, i.client_id, i.quote_id, i.invoice_number,
	i.invoice_date, i.due_date, i.status, i.subtotal, i.tax_amount, i.total,
	i.paid_amount, i.notes, i.items, i.created_at, i.updated_at, c.name AS client_name`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var invoiceDate time.Time
	var dueDate *time.Time
	var itemsJSON []byte
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.ClientID, &inv.QuoteID, &inv.InvoiceNumber,
		&invoiceDate, &dueDate, &inv.Status, &inv.Subtotal, &inv.TaxAmount, &inv.Total,
		&inv.PaidAmount, &inv.Notes, &itemsJSON, &inv.CreatedAt, &inv.UpdatedAt, &inv.ClientName)
	if err != nil {
		return nil, err
	}
	inv.InvoiceDate = shared.NewDate(invoiceDate)
	if dueDate != nil {
		d := shared.NewDate(*dueDate)
		inv.DueDate = &d
	}
	inv.Items = []InvoiceItem{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &inv.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	return &inv, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices i
		LEFT JOIN clients c ON i.client_id = c.id
		WHERE i.company_id = $1
		ORDER BY i.created_at DESC, i.id DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("invoices: list: %w", err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("invoices: scan: %w", err)
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id, companyID int64) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices i
		LEFT JOIN clients c ON i.client_id = c.id
		WHERE i.id = $1 AND i.company_id = $2
	`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("invoices: get: %w", err)
	}
	return inv, nil
}

func (r *repository) Insert(ctx context.Context, inv Invoice) (int64, error) {
	itemsJSON, err := json.Marshal(inv.Items)
	if err != nil {
		return 0, fmt.Errorf("invoices: encode items: %w", err)
	}
	var due *time.Time
	if inv.DueDate != nil {
		due = &inv.DueDate.Time
	}
	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO invoices (company_id, client_id, quote_id, invoice_number, invoice_date,
		                      due_date, status, subtotal, tax_amount, total, paid_amount,
		                      notes, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, inv.CompanyID, inv.ClientID, inv.QuoteID, inv.InvoiceNumber, inv.InvoiceDate.Time,
		due, inv.Status, inv.Subtotal, inv.TaxAmount, inv.Total, inv.PaidAmount,
		inv.Notes, itemsJSON).Scan(&id)
	if err != nil {
		if db.UniqueViolation(err) {
			return 0, fmt.Errorf("%w: invoice number %s already exists", httpx.ErrConflict, inv.InvoiceNumber)
		}
		return 0, fmt.Errorf("invoices: insert: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, inv Invoice) error {
	itemsJSON, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("invoices: encode items: %w", err)
	}
	var due *time.Time
	if inv.DueDate != nil {
		due = &inv.DueDate.Time
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices
		SET client_id = $1, invoice_number = $2, invoice_date = $3, due_date = $4,
		    status = $5, subtotal = $6, tax_amount = $7, total = $8, notes = $9,
		    items = $10, updated_at = NOW()
		WHERE id = $11 AND company_id = $12
	`, inv.ClientID, inv.InvoiceNumber, inv.InvoiceDate.Time, due, inv.Status,
		inv.Subtotal, inv.TaxAmount, inv.Total, inv.Notes, itemsJSON, inv.ID, inv.CompanyID)
	if err != nil {
		if db.UniqueViolation(err) {
			return fmt.Errorf("%w: invoice number %s already exists", httpx.ErrConflict, inv.InvoiceNumber)
		}
		return fmt.Errorf("invoices: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id, companyID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM invoices WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		// A receipt committed after the service's guard ran still blocks
		// the delete through the receipts FK.
		if db.ForeignKeyViolation(err) {
			return fmt.Errorf("%w: invoice has receipts; delete them first", httpx.ErrConflict)
		}
		return fmt.Errorf("invoices: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) CountReceipts(ctx context.Context, invoiceID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM receipts WHERE invoice_id = $1`, invoiceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("invoices: count receipts: %w", err)
	}
	return count, nil
}

func (r *repository) NextNumber(ctx context.Context, companyID int64, now time.Time) (string, error) {
	return numbering.Next(ctx, r.db, companyID, numbering.KindInvoice, now)
}
