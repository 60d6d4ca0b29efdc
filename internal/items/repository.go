package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sibogoje/crm/internal/platform/httpx"
)

// Repository persists catalog items, tenant-scoped throughout.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Item, error)
	Get(ctx context.Context, id, companyID int64) (*Item, error)
	Create(ctx context.Context, companyID int64, req CreateItemRequest) (*Item, error)
	Update(ctx context.Context, id, companyID int64, req CreateItemRequest) (*Item, error)
	Delete(ctx context.Context, id, companyID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the pgx-backed item repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, company_id, name, description, price, category, is_service, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.CompanyID, &it.Name, &it.Description, &it.Price,
		&it.Category, &it.IsService, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM items WHERE company_id = $1 ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("items: list: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("items: scan: %w", err)
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id, companyID int64) (*Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("items: get: %w", err)
	}
	return it, nil
}

func (r *repository) Create(ctx context.Context, companyID int64, req CreateItemRequest) (*Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `
		INSERT INTO items (company_id, name, description, price, category, is_service)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+itemColumns,
		companyID, req.Name, req.Description, req.Price, req.Category, req.IsService))
	if err != nil {
		return nil, fmt.Errorf("items: create: %w", err)
	}
	return it, nil
}

func (r *repository) Update(ctx context.Context, id, companyID int64, req CreateItemRequest) (*Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `
		UPDATE items
		SET name = $1, description = $2, price = $3, category = $4,
		    is_service = $5, updated_at = NOW()
		WHERE id = $6 AND company_id = $7
		RETURNING `+itemColumns,
		req.Name, req.Description, req.Price, req.Category, req.IsService, id, companyID))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("items: update: %w", err)
	}
	return it, nil
}

func (r *repository) Delete(ctx context.Context, id, companyID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM items WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("items: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
