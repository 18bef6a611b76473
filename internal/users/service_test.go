package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/shared"
)

type memoryUserRepo struct {
	users map[int64]User
}

func newMemoryUserRepo(users ...User) *memoryUserRepo {
	repo := &memoryUserRepo{users: make(map[int64]User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *memoryUserRepo) ListUsers(ctx context.Context, orgID int64) ([]User, error) {
	var out []User
	for _, u := range r.users {
		if orgID == 0 || u.OrgID == orgID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memoryUserRepo) GetUser(ctx context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) UpdateRole(ctx context.Context, id int64, role authz.Role) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Role = role
	r.users[id] = u
	return nil
}

func (r *memoryUserRepo) ReplacePermissions(ctx context.Context, id int64, permissions []string) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Permissions = permissions
	r.users[id] = u
	return nil
}

func (r *memoryUserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	r.users[id] = u
	return nil
}

type recordingAuditor struct {
	logs []shared.AuditLog
}

func (a *recordingAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestAssignRole(t *testing.T) {
	repo := newMemoryUserRepo(User{ID: 7, Role: authz.RoleResident, IsActive: true})
	auditor := &recordingAuditor{}
	svc := NewService(repo, auditor, nil)

	require.NoError(t, svc.AssignRole(context.Background(), 1, 7, "property_manager"))
	require.Equal(t, authz.RolePropertyManager, repo.users[7].Role)
	require.Len(t, auditor.logs, 1)
	require.Equal(t, "assign_role", auditor.logs[0].Action)
}

func TestAssignRoleRejectsUnknown(t *testing.T) {
	repo := newMemoryUserRepo(User{ID: 7, Role: authz.RoleResident})
	svc := NewService(repo, nil, nil)

	err := svc.AssignRole(context.Background(), 1, 7, "galactic_overlord")
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, authz.RoleResident, repo.users[7].Role)
}

func TestReplacePermissionsNormalizesAndKeepsUnknownTokens(t *testing.T) {
	repo := newMemoryUserRepo(User{ID: 3, Role: authz.RoleResident})
	svc := NewService(repo, nil, nil)

	err := svc.ReplacePermissions(context.Background(), 1, 3, []string{" Manage_Users ", "stale_token", ""})
	require.NoError(t, err)
	require.Equal(t, []string{"manage_users", "stale_token"}, repo.users[3].Permissions)
}

func TestReplacePermissionsMissingUser(t *testing.T) {
	svc := NewService(newMemoryUserRepo(), nil, nil)
	err := svc.ReplacePermissions(context.Background(), 1, 99, []string{"manage_users"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEffectivePermissionsShowsTargetNotActor(t *testing.T) {
	repo := newMemoryUserRepo(User{
		ID:          3,
		Role:        authz.RoleResident,
		Permissions: []string{"manage_users", "stale_token"},
	})
	svc := NewService(repo, nil, nil)

	perms, err := svc.EffectivePermissions(context.Background(), 3)
	require.NoError(t, err)
	require.Contains(t, perms, authz.PermManageUsers) // explicit grant
	require.Contains(t, perms, authz.PermViewBilling) // role default
	require.Contains(t, perms, authz.PermViewTickets) // role default
	require.NotContains(t, perms, authz.PermManageBilling)
	// Stale tokens parse away rather than surfacing.
	for _, p := range perms {
		require.NotEqual(t, authz.PermissionUnknown, p)
	}
}

func TestEffectivePermissionsExpandsExplicitWildcard(t *testing.T) {
	// A wildcard granted as an override, not via role defaults, must
	// also expand to the full vocabulary exactly once.
	u := User{ID: 5, Role: authz.RoleResident, Permissions: []string{"*"}}
	perms := u.EffectivePermissions()
	require.ElementsMatch(t, authz.AllPermissions(), perms)
}

func TestEffectivePermissionsExpandsWildcard(t *testing.T) {
	repo := newMemoryUserRepo(User{ID: 1, Role: authz.RolePlatformAdmin})
	svc := NewService(repo, nil, nil)

	perms, err := svc.EffectivePermissions(context.Background(), 1)
	require.NoError(t, err)
	require.ElementsMatch(t, authz.AllPermissions(), perms)
}
