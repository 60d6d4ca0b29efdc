package quotes

import (
	"context"
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

// EnrichedItem is a quote line joined with its catalog entry, used when
// deriving an invoice from a quote.
type EnrichedItem struct {
	QuoteItem
	CatalogName        *string
	CatalogDescription *string
}

// Repository persists quotes and their line items. Multi-row mutations run
// through WithTx so header and lines commit or roll back together.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context, companyID int64) ([]Quote, error)
	Get(ctx context.Context, id, companyID int64) (*Quote, error)
	Insert(ctx context.Context, q Quote) (int64, error)
	UpdateHeader(ctx context.Context, q Quote) error
	DeleteQuote(ctx context.Context, id, companyID int64) error
	InsertItem(ctx context.Context, item QuoteItem) error
	DeleteItems(ctx context.Context, quoteID int64) error
	ListItems(ctx context.Context, quoteID int64) ([]QuoteItem, error)
	ListItemsEnriched(ctx context.Context, quoteID int64) ([]EnrichedItem, error)
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

// NewRepository builds the pgx-backed quote repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quoteColumns = `q.id, q.company_id, q.client_id, q.quote_number, q.quote_date,
	q.expiry_date, q.status, q.subtotal, q.tax_amount, q.total_amount, q.notes,
	q.created_at, q.updated_at, c.name AS client_name`

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	var quoteDate time.Time
	var expiryDate *time.Time
	err := row.Scan(&q.ID, &q.CompanyID, &q.ClientID, &q.QuoteNumber, &quoteDate,
		&expiryDate, &q.Status, &q.Subtotal, &q.TaxAmount, &q.TotalAmount, &q.Notes,
		&q.CreatedAt, &q.UpdatedAt, &q.ClientName)
	if err != nil {
		return nil, err
	}
	q.QuoteDate = shared.NewDate(quoteDate)
	if expiryDate != nil {
		d := shared.NewDate(*expiryDate)
		q.ExpiryDate = &d
	}
	return &q, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Quote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes q
		LEFT JOIN clients c ON q.client_id = c.id
		WHERE q.company_id = $1
		ORDER BY q.created_at DESC, q.id DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("quotes: list: %w", err)
	}
	defer rows.Close()

	var out []Quote
	var ids []int64
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("quotes: scan: %w", err)
		}
		out = append(out, *q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	itemsByQuote, err := r.itemsForQuotes(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = itemsByQuote[out[i].ID]
		if out[i].Items == nil {
			out[i].Items = []QuoteItem{}
		}
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id, companyID int64) (*Quote, error) {
	q, err := scanQuote(r.db.QueryRow(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes q
		LEFT JOIN clients c ON q.client_id = c.id
		WHERE q.id = $1 AND q.company_id = $2
	`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("quotes: get: %w", err)
	}

	items, err := r.ListItems(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	q.Items = items
	return q, nil
}

func (r *repository) Insert(ctx context.Context, q Quote) (int64, error) {
	var expiry *time.Time
	if q.ExpiryDate != nil {
		expiry = &q.ExpiryDate.Time
	}
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotes (company_id, client_id, quote_number, quote_date, expiry_date,
		                    status, subtotal, tax_amount, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, q.CompanyID, q.ClientID, q.QuoteNumber, q.QuoteDate.Time, expiry,
		q.Status, q.Subtotal, q.TaxAmount, q.TotalAmount, q.Notes).Scan(&id)
	if err != nil {
		if db.UniqueViolation(err) {
			return 0, fmt.Errorf("%w: quote number %s already exists", httpx.ErrConflict, q.QuoteNumber)
		}
		return 0, fmt.Errorf("quotes: insert: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, q Quote) error {
	var expiry *time.Time
	if q.ExpiryDate != nil {
		expiry = &q.ExpiryDate.Time
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE quotes
		SET client_id = $1, quote_number = $2, quote_date = $3, expiry_date = $4,
		    status = $5, subtotal = $6, tax_amount = $7, total_amount = $8,
		    notes = $9, updated_at = NOW()
		WHERE id = $10 AND company_id = $11
	`, q.ClientID, q.QuoteNumber, q.QuoteDate.Time, expiry, q.Status,
		q.Subtotal, q.TaxAmount, q.TotalAmount, q.Notes, q.ID, q.CompanyID)
	if err != nil {
		if db.UniqueViolation(err) {
			return fmt.Errorf("%w: quote number %s already exists", httpx.ErrConflict, q.QuoteNumber)
		}
		return fmt.Errorf("quotes: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteQuote(ctx context.Context, id, companyID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM quotes WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("quotes: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) InsertItem(ctx context.Context, item QuoteItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO quote_items (quote_id, item_id, item_name, description,
		                         unit_price, quantity, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.QuoteID, item.ItemID, item.ItemName, item.Description,
		item.UnitPrice, item.Quantity, item.TotalPrice)
	if err != nil {
		return fmt.Errorf("quotes: insert item: %w", err)
	}
	return nil
}

func (r *repository) DeleteItems(ctx context.Context, quoteID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, quoteID); err != nil {
		return fmt.Errorf("quotes: delete items: %w", err)
	}
	return nil
}

func (r *repository) ListItems(ctx context.Context, quoteID int64) ([]QuoteItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quote_id, item_id, item_name, description, unit_price, quantity, total_price
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY id
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("quotes: list items: %w", err)
	}
	defer rows.Close()

	items := []QuoteItem{}
	for rows.Next() {
		var it QuoteItem
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.ItemID, &it.ItemName,
			&it.Description, &it.UnitPrice, &it.Quantity, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("quotes: scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) ListItemsEnriched(ctx context.Context, quoteID int64) ([]EnrichedItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT qi.id, qi.quote_id, qi.item_id, qi.item_name, qi.description,
		       qi.unit_price, qi.quantity, qi.total_price,
		       i.name, i.description
		FROM quote_items qi
		LEFT JOIN items i ON qi.item_id = i.id
		WHERE qi.quote_id = $1
		ORDER BY qi.id
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("quotes: list items enriched: %w", err)
	}
	defer rows.Close()

	var items []EnrichedItem
	for rows.Next() {
		var it EnrichedItem
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.ItemID, &it.ItemName,
			&it.Description, &it.UnitPrice, &it.Quantity, &it.TotalPrice,
			&it.CatalogName, &it.CatalogDescription); err != nil {
			return nil, fmt.Errorf("quotes: scan enriched item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) NextNumber(ctx context.Context, companyID int64, now time.Time) (string, error) {
	return numbering.Next(ctx, r.db, companyID, numbering.KindQuote, now)
}

func (r *repository) itemsForQuotes(ctx context.Context, quoteIDs []int64) (map[int64][]QuoteItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quote_id, item_id, item_name, description, unit_price, quantity, total_price
		FROM quote_items
		WHERE quote_id = ANY($1)
		ORDER BY quote_id, id
	`, quoteIDs)
	if err != nil {
		return nil, fmt.Errorf("quotes: list items batch: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]QuoteItem)
	for rows.Next() {
		var it QuoteItem
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.ItemID, &it.ItemName,
			&it.Description, &it.UnitPrice, &it.Quantity, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("quotes: scan item: %w", err)
		}
		out[it.QuoteID] = append(out[it.QuoteID], it)
	}
	return out, rows.Err()
}
