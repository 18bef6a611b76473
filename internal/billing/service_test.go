package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/societyhub/societyhub/internal/shared"
)

type memoryBillingRepo struct {
	invoices map[int64]Invoice
	payments []Payment
	nextID   int64
}

func newMemoryBillingRepo() *memoryBillingRepo {
	return &memoryBillingRepo{invoices: make(map[int64]Invoice)}
}

func (r *memoryBillingRepo) matching(societyID int64, status string) []Invoice {
	var out []Invoice
	for id := int64(1); id <= r.nextID; id++ {
		inv, ok := r.invoices[id]
		if ok && inv.SocietyID == societyID && (status == "" || inv.Status == status) {
			out = append(out, inv)
		}
	}
	return out
}

func (r *memoryBillingRepo) ListInvoices(ctx context.Context, societyID int64, status string, limit, offset int) ([]Invoice, error) {
	all := r.matching(societyID, status)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memoryBillingRepo) CountInvoices(ctx context.Context, societyID int64, status string) (int, error) {
	return len(r.matching(societyID, status)), nil
}

func (r *memoryBillingRepo) GetInvoice(ctx context.Context, societyID, id int64) (Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.SocietyID != societyID {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, nil
}

func (r *memoryBillingRepo) CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	r.nextID++
	inv.ID = r.nextID
	inv.Status = StatusIssued
	inv.IssuedAt = time.Now()
	r.invoices[inv.ID] = inv
	return inv, nil
}

func (r *memoryBillingRepo) ApplyPayment(ctx context.Context, p Payment, newStatus string) (Invoice, error) {
	inv, ok := r.invoices[p.InvoiceID]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	r.payments = append(r.payments, p)
	inv.PaidMinor += p.AmountMinor
	inv.Status = newStatus
	r.invoices[inv.ID] = inv
	return inv, nil
}

func (r *memoryBillingRepo) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryBillingRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	inv, ok := r.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Status = status
	r.invoices[id] = inv
	return nil
}

func (r *memoryBillingRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var n int64
	for id, inv := range r.invoices {
		if inv.DueDate.Before(asOf) && (inv.Status == StatusIssued || inv.Status == StatusPartiallyPaid) {
			inv.Status = StatusOverdue
			r.invoices[id] = inv
			n++
		}
	}
	return n, nil
}

func newBillingService(repo RepositoryPort) *Service {
	return NewService(repo, nil, nil)
}

func issueTestInvoice(t *testing.T, svc *Service, amount int64) Invoice {
	t.Helper()
	inv, err := svc.Issue(context.Background(), 1, Invoice{
		SocietyID:   1,
		UnitLabel:   "A-101",
		Description: "Maintenance August",
		AmountMinor: amount,
		Currency:    "inr",
		DueDate:     time.Now().Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return inv
}

func TestIssueValidation(t *testing.T) {
	svc := newBillingService(newMemoryBillingRepo())
	ctx := context.Background()
	future := time.Now().Add(time.Hour)

	_, err := svc.Issue(ctx, 1, Invoice{SocietyID: 1, Description: "x", AmountMinor: 100, Currency: "INR", DueDate: future})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Issue(ctx, 1, Invoice{SocietyID: 1, UnitLabel: "A-101", Description: "x", AmountMinor: 0, Currency: "INR", DueDate: future})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Issue(ctx, 1, Invoice{SocietyID: 1, UnitLabel: "A-101", Description: "x", AmountMinor: 100, Currency: "rupees", DueDate: future})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Issue(ctx, 1, Invoice{SocietyID: 1, UnitLabel: "A-101", Description: "x", AmountMinor: 100, Currency: "INR", DueDate: time.Now().Add(-time.Hour)})
	require.ErrorIs(t, err, shared.ErrValidation)

	inv := issueTestInvoice(t, svc, 250000)
	require.Equal(t, StatusIssued, inv.Status)
	require.Equal(t, "INR", inv.Currency)
}

func TestPaymentLifecycle(t *testing.T) {
	svc := newBillingService(newMemoryBillingRepo())
	ctx := context.Background()
	inv := issueTestInvoice(t, svc, 250000)

	partial, err := svc.RecordPayment(ctx, 1, 1, Payment{InvoiceID: inv.ID, AmountMinor: 100000, Method: "upi"})
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, partial.Status)
	require.Equal(t, int64(150000), partial.Outstanding())

	// Overpayment against the remaining balance is rejected.
	_, err = svc.RecordPayment(ctx, 1, 1, Payment{InvoiceID: inv.ID, AmountMinor: 200000, Method: "cash"})
	require.ErrorIs(t, err, shared.ErrValidation)

	paid, err := svc.RecordPayment(ctx, 1, 1, Payment{InvoiceID: inv.ID, AmountMinor: 150000, Method: "bank_transfer"})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.Equal(t, int64(0), paid.Outstanding())

	_, err = svc.RecordPayment(ctx, 1, 1, Payment{InvoiceID: inv.ID, AmountMinor: 100, Method: "cash"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestPaymentValidation(t *testing.T) {
	svc := newBillingService(newMemoryBillingRepo())
	ctx := context.Background()
	inv := issueTestInvoice(t, svc, 1000)

	_, err := svc.RecordPayment(ctx, 1, 1, Payment{InvoiceID: inv.ID, AmountMinor: 0, Method: "cash"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.RecordPayment(ctx, 1, 1, Payment{InvoiceID: inv.ID, AmountMinor: 100, Method: "barter"})
	require.ErrorIs(t, err, shared.ErrValidation)

	// Invoice owned by another society is not visible.
	_, err = svc.RecordPayment(ctx, 1, 2, Payment{InvoiceID: inv.ID, AmountMinor: 100, Method: "cash"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestVoidInvoice(t *testing.T) {
	svc := newBillingService(newMemoryBillingRepo())
	ctx := context.Background()

	inv := issueTestInvoice(t, svc, 1000)
	require.NoError(t, svc.Void(ctx, 1, 1, inv.ID))

	// Void is idempotent.
	require.NoError(t, svc.Void(ctx, 1, 1, inv.ID))

	paidSome := issueTestInvoice(t, svc, 1000)
	_, err := svc.RecordPayment(ctx, 1, 1, Payment{InvoiceID: paidSome.ID, AmountMinor: 500, Method: "cash"})
	require.NoError(t, err)
	require.ErrorIs(t, svc.Void(ctx, 1, 1, paidSome.ID), shared.ErrConflict)
}

func TestSweepOverdue(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo)
	ctx := context.Background()

	inv := issueTestInvoice(t, svc, 1000)
	stored := repo.invoices[inv.ID]
	stored.DueDate = time.Now().Add(-48 * time.Hour)
	repo.invoices[inv.ID] = stored

	current := issueTestInvoice(t, svc, 2000)

	n, err := svc.SweepOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Equal(t, StatusOverdue, repo.invoices[inv.ID].Status)
	require.Equal(t, StatusIssued, repo.invoices[current.ID].Status)
}

func TestListInvoicesPagination(t *testing.T) {
	svc := newBillingService(newMemoryBillingRepo())
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		issueTestInvoice(t, svc, int64(1000*(i+1)))
	}

	page1, pagination, err := svc.ListInvoices(ctx, 1, "", 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Equal(t, 5, pagination.Total)
	require.Equal(t, 3, pagination.TotalPages)

	page3, pagination, err := svc.ListInvoices(ctx, 1, "", 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	require.Equal(t, 3, pagination.Page)

	paid, _, err := svc.ListInvoices(ctx, 1, StatusPaid, 1, 10)
	require.NoError(t, err)
	require.Empty(t, paid)
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "INR 12,345.50", FormatAmount(1234550, "INR"))
	require.Equal(t, "INR 0.05", FormatAmount(5, "INR"))
	require.Equal(t, "USD -1.00", FormatAmount(-100, "USD"))
}
