package receipts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sibogoje/crm/internal/invoices"
	"github.com/Sibogoje/crm/internal/numbering"
	"github.com/Sibogoje/crm/internal/platform/db"
	"github.com/Sibogoje/crm/internal/platform/httpx"
)

// InvoiceBalance is the locked payment snapshot of an invoice row.
type InvoiceBalance struct {
	Paid  float64
	Total float64
}

// Repository persists receipts and carries the invoice payment writes that
// every receipt mutation performs inside its transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context, companyID int64) ([]Receipt, error)
	ListByInvoice(ctx context.Context, invoiceID, companyID int64) ([]Receipt, error)
	Get(ctx context.Context, id, companyID int64) (*Receipt, error)
	Insert(ctx context.Context, rec Receipt) (int64, error)
	Update(ctx context.Context, rec Receipt) error
	Delete(ctx context.Context, id, companyID int64) error
	LockInvoice(ctx context.Context, invoiceID, companyID int64) (*InvoiceBalance, error)
	SetInvoicePayment(ctx context.Context, invoiceID int64, paid float64, status invoices.InvoiceStatus) error
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

// NewRepository builds the pgx-backed receipt repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const receiptColumns = `r.id, r.company_id, r.invoice_id, r.receipt_number, r.amount,
	r.payment_method, r.payment_reference, r.notes, r.created_at,
	i.invoice_number, c.name AS client_name`

const receiptJoins = `
	FROM receipts r
	LEFT JOIN invoices i ON r.invoice_id = i.id
	LEFT JOIN clients c ON i.client_id = c.id`

func scanReceipt(row pgx.Row) (*Receipt, error) {
	var rec Receipt
	err := row.Scan(&rec.ID, &rec.CompanyID, &rec.InvoiceID, &rec.ReceiptNumber, &rec.Amount,
		&rec.PaymentMethod, &rec.PaymentReference, &rec.Notes, &rec.CreatedAt,
		&rec.InvoiceNumber, &rec.ClientName)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Receipt, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+receiptColumns+receiptJoins+`
		WHERE r.company_id = $1
		ORDER BY r.created_at DESC, r.id DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("receipts: list: %w", err)
	}
	defer rows.Close()
	return collectReceipts(rows)
}

func (r *repository) ListByInvoice(ctx context.Context, invoiceID, companyID int64) ([]Receipt, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+receiptColumns+receiptJoins+`
		WHERE r.invoice_id = $1 AND r.company_id = $2
		ORDER BY r.created_at DESC, r.id DESC
	`, invoiceID, companyID)
	if err != nil {
		return nil, fmt.Errorf("receipts: list by invoice: %w", err)
	}
	defer rows.Close()
	return collectReceipts(rows)
}

func collectReceipts(rows pgx.Rows) ([]Receipt, error) {
	var out []Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("receipts: scan: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id, companyID int64) (*Receipt, error) {
	rec, err := scanReceipt(r.db.QueryRow(ctx, `
		SELECT `+receiptColumns+receiptJoins+`
		WHERE r.id = $1 AND r.company_id = $2
	`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("receipts: get: %w", err)
	}
	return rec, nil
}

func (r *repository) Insert(ctx context.Context, rec Receipt) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO receipts (company_id, invoice_id, receipt_number, amount,
		                      payment_method, payment_reference, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, rec.CompanyID, rec.InvoiceID, rec.ReceiptNumber, rec.Amount,
		rec.PaymentMethod, rec.PaymentReference, rec.Notes).Scan(&id)
	if err != nil {
		if db.UniqueViolation(err) {
			return 0, fmt.Errorf("%w: receipt number %s already exists", httpx.ErrConflict, rec.ReceiptNumber)
		}
		return 0, fmt.Errorf("receipts: insert: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, rec Receipt) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE receipts
		SET amount = $1, payment_method = $2, payment_reference = $3, notes = $4
		WHERE id = $5 AND company_id = $6
	`, rec.Amount, rec.PaymentMethod, rec.PaymentReference, rec.Notes, rec.ID, rec.CompanyID)
	if err != nil {
		return fmt.Errorf("receipts: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id, companyID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM receipts WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("receipts: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// LockInvoice takes a row lock on the invoice so concurrent receipt
// mutations serialize their payment recomputations.
func (r *repository) LockInvoice(ctx context.Context, invoiceID, companyID int64) (*InvoiceBalance, error) {
	var bal InvoiceBalance
	err := r.db.QueryRow(ctx, `
		SELECT paid_amount, total FROM invoices
		WHERE id = $1 AND company_id = $2
		FOR UPDATE
	`, invoiceID, companyID).Scan(&bal.Paid, &bal.Total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("receipts: lock invoice: %w", err)
	}
	return &bal, nil
}

func (r *repository) SetInvoicePayment(ctx context.Context, invoiceID int64, paid float64, status invoices.InvoiceStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE invoices SET paid_amount = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`, paid, status, invoiceID)
	if err != nil {
		return fmt.Errorf("receipts: write invoice payment: %w", err)
	}
	return nil
}

func (r *repository) NextNumber(ctx context.Context, companyID int64, now time.Time) (string, error) {
	return numbering.Next(ctx, r.db, companyID, numbering.KindReceipt, now)
}
