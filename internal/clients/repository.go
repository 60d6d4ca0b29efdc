package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sibogoje/crm/internal/platform/httpx"
)

// Repository persists client records. All operations are tenant-scoped:
// a row owned by another company behaves as if it does not exist.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Client, error)
	Get(ctx context.Context, id, companyID int64) (*Client, error)
	Create(ctx context.Context, companyID int64, req CreateClientRequest) (*Client, error)
	Update(ctx context.Context, id, companyID int64, req CreateClientRequest) (*Client, error)
	Delete(ctx context.Context, id, companyID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the pgx-backed client repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const clientColumns = `id, company_id, name, email, phone, address, tax_id, client_company, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.TaxID, &c.ClientCompany, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Client, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE company_id = $1 ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("clients: list: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("clients: scan: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id, companyID int64) (*Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("clients: get: %w", err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, companyID int64, req CreateClientRequest) (*Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx, `
		INSERT INTO clients (company_id, name, email, phone, address, tax_id, client_company)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+clientColumns,
		companyID, req.Name, req.Email, req.Phone, req.Address, req.TaxID, req.ClientCompany))
	if err != nil {
		return nil, fmt.Errorf("clients: create: %w", err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id, companyID int64, req CreateClientRequest) (*Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx, `
		UPDATE clients
		SET name = $1, email = $2, phone = $3, address = $4, tax_id = $5,
		    client_company = $6, updated_at = NOW()
		WHERE id = $7 AND company_id = $8
		RETURNING `+clientColumns,
		req.Name, req.Email, req.Phone, req.Address, req.TaxID, req.ClientCompany, id, companyID))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("clients: update: %w", err)
	}
	return c, nil
}

func (r *repository) Delete(ctx context.Context, id, companyID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM clients WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("clients: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
