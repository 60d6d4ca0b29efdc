package receipts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sibogoje/crm/internal/invoices"
	"github.com/Sibogoje/crm/internal/platform/httpx"
)

type memInvoice struct {
	companyID int64
	paid      float64
	total     float64
	status    invoices.InvoiceStatus
}

type memRepo struct {
	receipts map[int64]Receipt
	invoices map[int64]*memInvoice
	nextID   int64
	seq      int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		receipts: make(map[int64]Receipt),
		invoices: make(map[int64]*memInvoice),
	}
}

func (m *memRepo) snapshot() (map[int64]Receipt, map[int64]memInvoice) {
	receipts := make(map[int64]Receipt, len(m.receipts))
	for k, v := range m.receipts {
		receipts[k] = v
	}
	invs := make(map[int64]memInvoice, len(m.invoices))
	for k, v := range m.invoices {
		invs[k] = *v
	}
	return receipts, invs
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	receipts, invs := m.snapshot()
	if err := fn(ctx, m); err != nil {
		m.receipts = receipts
		for k, v := range invs {
			inv := v
			m.invoices[k] = &inv
		}
		return err
	}
	return nil
}

func (m *memRepo) List(ctx context.Context, companyID int64) ([]Receipt, error) {
	var out []Receipt
	for _, rec := range m.receipts {
		if rec.CompanyID == companyID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memRepo) ListByInvoice(ctx context.Context, invoiceID, companyID int64) ([]Receipt, error) {
	var out []Receipt
	for _, rec := range m.receipts {
		if rec.CompanyID == companyID && rec.InvoiceID == invoiceID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memRepo) Get(ctx context.Context, id, companyID int64) (*Receipt, error) {
	rec, ok := m.receipts[id]
	if !ok || rec.CompanyID != companyID {
		return nil, httpx.ErrNotFound
	}
	return &rec, nil
}

func (m *memRepo) Insert(ctx context.Context, rec Receipt) (int64, error) {
	m.nextID++
	rec.ID = m.nextID
	m.receipts[rec.ID] = rec
	return rec.ID, nil
}

func (m *memRepo) Update(ctx context.Context, rec Receipt) error {
	existing, ok := m.receipts[rec.ID]
	if !ok || existing.CompanyID != rec.CompanyID {
		return httpx.ErrNotFound
	}
	m.receipts[rec.ID] = rec
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id, companyID int64) error {
	rec, ok := m.receipts[id]
	if !ok || rec.CompanyID != companyID {
		return httpx.ErrNotFound
	}
	delete(m.receipts, id)
	return nil
}

func (m *memRepo) LockInvoice(ctx context.Context, invoiceID, companyID int64) (*InvoiceBalance, error) {
	inv, ok := m.invoices[invoiceID]
	if !ok || inv.companyID != companyID {
		return nil, httpx.ErrNotFound
	}
	return &InvoiceBalance{Paid: inv.paid, Total: inv.total}, nil
}

func (m *memRepo) SetInvoicePayment(ctx context.Context, invoiceID int64, paid float64, status invoices.InvoiceStatus) error {
	inv, ok := m.invoices[invoiceID]
	if !ok {
		return httpx.ErrNotFound
	}
	inv.paid = paid
	inv.status = status
	return nil
}

func (m *memRepo) NextNumber(ctx context.Context, companyID int64, now time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("REC-%s-%04d", now.Format("2006"), m.seq), nil
}

func ptr[T any](v T) *T { return &v }

func newTestService(repo Repository) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestCreateAppliesPaymentAndStatus(t *testing.T) {
	repo := newMemRepo()
	repo.invoices[7] = &memInvoice{companyID: 1, total: 100, status: invoices.StatusDraft}
	svc := newTestService(repo)

	rec, err := svc.Create(context.Background(), 1, CreateReceiptRequest{
		InvoiceID:     7,
		Amount:        ptr(40.0),
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, "REC-2025-0001", rec.ReceiptNumber)
	assert.Equal(t, 40.0, repo.invoices[7].paid)
	assert.Equal(t, invoices.StatusSent, repo.invoices[7].status)

	_, err = svc.Create(context.Background(), 1, CreateReceiptRequest{
		InvoiceID:     7,
		Amount:        ptr(60.0),
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, repo.invoices[7].paid)
	assert.Equal(t, invoices.StatusPaid, repo.invoices[7].status)
}

func TestCreateForeignInvoiceFails(t *testing.T) {
	repo := newMemRepo()
	repo.invoices[7] = &memInvoice{companyID: 2, total: 100}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), 1, CreateReceiptRequest{
		InvoiceID:     7,
		Amount:        ptr(40.0),
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	assert.Empty(t, repo.receipts)
}

func TestDeleteBacksPaymentOut(t *testing.T) {
	repo := newMemRepo()
	repo.invoices[7] = &memInvoice{companyID: 1, total: 100}
	svc := newTestService(repo)

	first, err := svc.Create(context.Background(), 1, CreateReceiptRequest{
		InvoiceID:     7,
		Amount:        ptr(40.0),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 1, CreateReceiptRequest{
		InvoiceID:     7,
		Amount:        ptr(60.0),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	require.Equal(t, invoices.StatusPaid, repo.invoices[7].status)

	require.NoError(t, svc.Delete(context.Background(), first.ID, 1))

	assert.Equal(t, 60.0, repo.invoices[7].paid)
	assert.Equal(t, invoices.StatusSent, repo.invoices[7].status)
}

func TestDeleteClampsPaidAtZero(t *testing.T) {
	repo := newMemRepo()
	repo.invoices[7] = &memInvoice{companyID: 1, total: 100}
	svc := newTestService(repo)

	rec, err := svc.Create(context.Background(), 1, CreateReceiptRequest{
		InvoiceID:     7,
		Amount:        ptr(40.0),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	// External drift: the invoice shows less paid than the receipt holds.
	repo.invoices[7].paid = 10

	require.NoError(t, svc.Delete(context.Background(), rec.ID, 1))
	assert.Equal(t, 0.0, repo.invoices[7].paid)
	assert.Equal(t, invoices.StatusDraft, repo.invoices[7].status)
}

func TestUpdateAdjustsInvoiceByDelta(t *testing.T) {
	repo := newMemRepo()
	repo.invoices[7] = &memInvoice{companyID: 1, total: 100}
	svc := newTestService(repo)

	rec, err := svc.Create(context.Background(), 1, CreateReceiptRequest{
		InvoiceID:     7,
		Amount:        ptr(40.0),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), rec.ID, 1, UpdateReceiptRequest{
		Amount: ptr(100.0),
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, updated.Amount)
	assert.Equal(t, 100.0, repo.invoices[7].paid)
	assert.Equal(t, invoices.StatusPaid, repo.invoices[7].status)
}

func TestUpdateWithoutAmountLeavesInvoiceAlone(t *testing.T) {
	repo := newMemRepo()
	repo.invoices[7] = &memInvoice{companyID: 1, total: 100}
	svc := newTestService(repo)

	rec, err := svc.Create(context.Background(), 1, CreateReceiptRequest{
		InvoiceID:     7,
		Amount:        ptr(40.0),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), rec.ID, 1, UpdateReceiptRequest{
		PaymentMethod: ptr("transfer"),
		Notes:         ptr("wired"),
	})
	require.NoError(t, err)

	assert.Equal(t, "transfer", updated.PaymentMethod)
	assert.Equal(t, 40.0, repo.invoices[7].paid)
}

func TestCreateDefaultsPaymentMethod(t *testing.T) {
	repo := newMemRepo()
	repo.invoices[7] = &memInvoice{companyID: 1, total: 100}
	svc := newTestService(repo)

	rec, err := svc.Create(context.Background(), 1, CreateReceiptRequest{
		InvoiceID: 7,
		Amount:    ptr(10.0),
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultPaymentMethod, rec.PaymentMethod)
}
