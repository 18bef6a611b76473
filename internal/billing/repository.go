package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societyhub/societyhub/internal/platform/db"
	"github.com/societyhub/societyhub/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, society_id, unit_label, description, amount_minor, paid_minor, currency, status, due_date, issued_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.SocietyID, &inv.UnitLabel, &inv.Description, &inv.AmountMinor, &inv.PaidMinor, &inv.Currency, &inv.Status, &inv.DueDate, &inv.IssuedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, err
}

// ListInvoices returns a page of a society's invoices, newest first.
// An empty status matches all of them.
func (r *Repository) ListInvoices(ctx context.Context, societyID int64, status string, limit, offset int) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE society_id = $1 AND ($2 = '' OR status = $2)
		 ORDER BY issued_at DESC
		 LIMIT $3 OFFSET $4`,
		societyID, status, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// CountInvoices counts a society's invoices matching the status filter.
func (r *Repository) CountInvoices(ctx context.Context, societyID int64, status string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE society_id = $1 AND ($2 = '' OR status = $2)`,
		societyID, status,
	).Scan(&n)
	return n, err
}

// GetInvoice returns one invoice.
func (r *Repository) GetInvoice(ctx context.Context, societyID, id int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND society_id = $2`, id, societyID)
	return scanInvoice(row)
}

// CreateInvoice inserts a new invoice in the issued state.
func (r *Repository) CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO invoices (society_id, unit_label, description, amount_minor, paid_minor, currency, status, due_date, issued_at, updated_at)
		 VALUES ($1, $2, $3, $4, 0, $5, $6, $7, NOW(), NOW())
		 RETURNING `+invoiceColumns,
		inv.SocietyID, inv.UnitLabel, inv.Description, inv.AmountMinor, inv.Currency, StatusIssued, inv.DueDate,
	)
	created, err := scanInvoice(row)
	if err != nil && db.IsUniqueViolation(err) {
		return Invoice{}, shared.ErrConflict
	}
	return created, err
}

// ApplyPayment records the payment and updates the invoice balance and
// status in one transaction.
func (r *Repository) ApplyPayment(ctx context.Context, p Payment, newStatus string) (Invoice, error) {
	var updated Invoice
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO payments (invoice_id, amount_minor, method, reference, received_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.InvoiceID, p.AmountMinor, p.Method, p.Reference, p.ReceivedAt,
		)
		if err != nil {
			return err
		}
		row := tx.QueryRow(ctx,
			`UPDATE invoices SET paid_minor = paid_minor + $2, status = $3, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+invoiceColumns,
			p.InvoiceID, p.AmountMinor, newStatus,
		)
		updated, err = scanInvoice(row)
		return err
	})
	if err != nil {
		return Invoice{}, err
	}
	return updated, nil
}

// ListPayments returns payments against an invoice, oldest first.
func (r *Repository) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, invoice_id, amount_minor, method, reference, received_at
		 FROM payments WHERE invoice_id = $1 ORDER BY received_at`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.AmountMinor, &p.Method, &p.Reference, &p.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateStatus sets an invoice status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkOverdue flips unpaid invoices past their due date to overdue and
// returns how many rows changed.
func (r *Repository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices SET status = $2, updated_at = NOW()
		 WHERE due_date < $1 AND status IN ($3, $4)`,
		asOf, StatusOverdue, StatusIssued, StatusPartiallyPaid,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
