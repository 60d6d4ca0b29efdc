package receipts

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/Sibogoje/crm/internal/platform/httpx"
)

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

type errDB struct{ err error }

func (d errDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, d.err
}

func (d errDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, d.err
}

func (d errDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{err: d.err}
}

func TestInsertDuplicateNumberIsConflict(t *testing.T) {
	repo := &repository{db: errDB{err: &pgconn.PgError{Code: "23505"}}}

	_, err := repo.Insert(context.Background(), Receipt{CompanyID: 1, ReceiptNumber: "REC-2025-0001"})
	assert.ErrorIs(t, err, httpx.ErrConflict)
	assert.Contains(t, err.Error(), "REC-2025-0001")
}
