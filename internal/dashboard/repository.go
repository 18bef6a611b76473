package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the summary count queries directly against the
// source tables so the dashboard stays decoupled from the module
// services.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) countRow(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

// CountResidents counts active users attached to the society org.
func (r *Repository) CountResidents(ctx context.Context, societyID int64) (int64, error) {
	return r.countRow(ctx,
		`SELECT COUNT(*) FROM users WHERE org_id = $1 AND is_active`, societyID)
}

// CountWhitelistedVehicles counts active whitelist entries.
func (r *Repository) CountWhitelistedVehicles(ctx context.Context, societyID int64) (int64, error) {
	return r.countRow(ctx,
		`SELECT COUNT(*) FROM vehicles WHERE society_id = $1 AND is_active`, societyID)
}

// CountGateEventsSince counts plate sightings after the cutoff.
func (r *Repository) CountGateEventsSince(ctx context.Context, societyID int64, since time.Time) (int64, error) {
	return r.countRow(ctx,
		`SELECT COUNT(*) FROM gate_events WHERE society_id = $1 AND occurred_at >= $2`, societyID, since)
}

// OutstandingBalance sums unpaid balances across open invoices.
func (r *Repository) OutstandingBalance(ctx context.Context, societyID int64) (int64, error) {
	return r.countRow(ctx,
		`SELECT COALESCE(SUM(amount_minor - paid_minor), 0) FROM invoices
		 WHERE society_id = $1 AND status IN ('issued', 'partially_paid', 'overdue')`, societyID)
}

// CountOverdueInvoices counts invoices flagged overdue.
func (r *Repository) CountOverdueInvoices(ctx context.Context, societyID int64) (int64, error) {
	return r.countRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE society_id = $1 AND status = 'overdue'`, societyID)
}

// CountOpenTickets counts tickets still being worked.
func (r *Repository) CountOpenTickets(ctx context.Context, societyID int64) (int64, error) {
	return r.countRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE society_id = $1 AND status IN ('open', 'in_progress')`, societyID)
}

// CountCheckedInVisitors counts visitors currently inside.
func (r *Repository) CountCheckedInVisitors(ctx context.Context, societyID int64) (int64, error) {
	return r.countRow(ctx,
		`SELECT COUNT(*) FROM visitor_passes WHERE society_id = $1 AND status = 'checked_in'`, societyID)
}
