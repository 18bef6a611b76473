package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societyhub/societyhub/internal/authz"
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

const userColumns = `id, org_id, email, name, role, permissions, is_active, created_at, updated_at`

// ListUsers returns users scoped to an organization. A zero orgID lists
// across all organizations (platform admin view).
func (r *Repository) ListUsers(ctx context.Context, orgID int64) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	args := []any{}
	if orgID != 0 {
		query = `SELECT ` + userColumns + ` FROM users WHERE org_id = $1 ORDER BY id`
		args = append(args, orgID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

// GetUser fetches a user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// UpdateRole assigns a new role to the user.
func (r *Repository) UpdateRole(ctx context.Context, id int64, role authz.Role) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReplacePermissions stores a full replacement of the user's explicit
// permission override list.
func (r *Repository) ReplacePermissions(ctx context.Context, id int64, permissions []string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET permissions = $2, updated_at = NOW() WHERE id = $1`, id, permissions)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetActive toggles the account's active flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// PrincipalFor resolves the stored principal for authorization checks.
// Inactive or missing users resolve to the anonymous principal so checks
// fail closed without an error response leaking account state.
func (r *Repository) PrincipalFor(ctx context.Context, userID int64) (authz.Principal, error) {
	var role string
	var permissions []string
	err := r.pool.QueryRow(ctx, `SELECT role, permissions FROM users WHERE id = $1 AND is_active`, userID).Scan(&role, &permissions)
	if err != nil {
		if err == pgx.ErrNoRows {
			return authz.Anonymous, nil
		}
		return authz.Anonymous, err
	}
	return authz.Principal{
		Role:        authz.ParseRole(role),
		Permissions: authz.ParsePermissions(permissions),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var role string
	if err := row.Scan(&user.ID, &user.OrgID, &user.Email, &user.Name, &role, &user.Permissions, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, err
	}
	user.Role = authz.ParseRole(role)
	return user, nil
}
