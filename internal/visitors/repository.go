package visitors

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

const passColumns = `id, society_id, code, visitor_name, visitor_phone, host_unit, purpose, status, valid_from, valid_until, checked_in_at, checked_out_at, created_at`

func scanPass(row pgx.Row) (Pass, error) {
	var p Pass
	err := row.Scan(&p.ID, &p.SocietyID, &p.Code, &p.VisitorName, &p.VisitorPhone, &p.HostUnit, &p.Purpose, &p.Status, &p.ValidFrom, &p.ValidUntil, &p.CheckedInAt, &p.CheckedOutAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Pass{}, shared.ErrNotFound
	}
	return p, err
}

// CreatePass inserts a new pass.
func (r *Repository) CreatePass(ctx context.Context, p Pass) (Pass, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO visitor_passes (society_id, code, visitor_name, visitor_phone, host_unit, purpose, status, valid_from, valid_until, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 RETURNING `+passColumns,
		p.SocietyID, p.Code, p.VisitorName, p.VisitorPhone, p.HostUnit, p.Purpose, StatusExpected, p.ValidFrom, p.ValidUntil,
	)
	return scanPass(row)
}

// FindByCode looks a pass up by its gate code.
func (r *Repository) FindByCode(ctx context.Context, societyID int64, code string) (Pass, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+passColumns+` FROM visitor_passes WHERE society_id = $1 AND code = $2`, societyID, code)
	return scanPass(row)
}

// ListPasses returns a society's passes, newest first. An empty status
// lists all of them.
func (r *Repository) ListPasses(ctx context.Context, societyID int64, status string) ([]Pass, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+passColumns+` FROM visitor_passes
		 WHERE society_id = $1 AND ($2 = '' OR status = $2)
		 ORDER BY created_at DESC`,
		societyID, status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Pass
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkCheckedIn transitions an expected pass to checked in.
func (r *Repository) MarkCheckedIn(ctx context.Context, id int64, at time.Time) (Pass, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE visitor_passes SET status = $2, checked_in_at = $3
		 WHERE id = $1
		 RETURNING `+passColumns,
		id, StatusCheckedIn, at,
	)
	return scanPass(row)
}

// MarkCheckedOut transitions a checked-in pass to checked out.
func (r *Repository) MarkCheckedOut(ctx context.Context, id int64, at time.Time) (Pass, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE visitor_passes SET status = $2, checked_out_at = $3
		 WHERE id = $1
		 RETURNING `+passColumns,
		id, StatusCheckedOut, at,
	)
	return scanPass(row)
}

// ExpirePasses closes expected passes whose validity window has lapsed
// and returns how many rows changed.
func (r *Repository) ExpirePasses(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE visitor_passes SET status = $2
		 WHERE status = $3 AND valid_until < $1`,
		asOf, StatusExpired, StatusExpected,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
