package orgs

import (
	"context"

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

const orgColumns = `id, COALESCE(parent_id, 0), kind, name, code, is_active, created_at, updated_at`

// ListOrganizations returns all organizations ordered by id.
func (r *Repository) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orgColumns+` FROM organizations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListChildren returns the direct children of an organization.
func (r *Repository) ListChildren(ctx context.Context, parentID int64) ([]Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orgColumns+` FROM organizations WHERE parent_id = $1 ORDER BY id`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// GetOrganization fetches an organization by ID.
func (r *Repository) GetOrganization(ctx context.Context, id int64) (Organization, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id)
	org, err := scanOrg(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Organization{}, shared.ErrNotFound
		}
		return Organization{}, err
	}
	return org, nil
}

// CreateOrganization inserts a new organization.
func (r *Repository) CreateOrganization(ctx context.Context, org Organization) (Organization, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO organizations (parent_id, kind, name, code, is_active, created_at, updated_at)
		 VALUES (NULLIF($1, 0), $2, $3, $4, TRUE, NOW(), NOW())
		 RETURNING `+orgColumns,
		org.ParentID, string(org.Kind), org.Name, org.Code,
	)
	created, err := scanOrg(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Organization{}, shared.ErrConflict
		}
		return Organization{}, err
	}
	return created, nil
}

// UpdateOrganization updates name, code and active flag.
func (r *Repository) UpdateOrganization(ctx context.Context, id int64, name, code string, active bool) (Organization, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE organizations SET name = $2, code = $3, is_active = $4, updated_at = NOW()
		 WHERE id = $1 RETURNING `+orgColumns,
		id, name, code, active,
	)
	org, err := scanOrg(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Organization{}, shared.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return Organization{}, shared.ErrConflict
		}
		return Organization{}, err
	}
	return org, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrg(row rowScanner) (Organization, error) {
	var org Organization
	var kind string
	if err := row.Scan(&org.ID, &org.ParentID, &kind, &org.Name, &org.Code, &org.IsActive, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return Organization{}, err
	}
	org.Kind = Kind(kind)
	return org, nil
}

func collect(rows pgx.Rows) ([]Organization, error) {
	var out []Organization
	for rows.Next() {
		org, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, org)
	}
	return out, rows.Err()
}
