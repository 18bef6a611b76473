package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRegistry(t *testing.T) {
	require.NoError(t, ValidateRegistry())
}

func TestRegistryTablesShareKeySet(t *testing.T) {
	require.Len(t, roleDefaults, len(roleLevels))
	for role := range roleLevels {
		_, ok := roleDefaults[role]
		require.True(t, ok, "role %q missing from default-permission table", role)
	}
}

func TestLevelOfUnknownRoleIsZero(t *testing.T) {
	require.Equal(t, 0, LevelOf(RoleUnknown))
	require.Equal(t, 0, LevelOf(Role("super_duper_admin")))
	for _, r := range Roles() {
		require.Positive(t, LevelOf(r))
	}
}

func TestDefaultPermissionsOf(t *testing.T) {
	require.Empty(t, DefaultPermissionsOf(RoleUnknown))
	require.Empty(t, DefaultPermissionsOf(Role("ghost")))
	require.Equal(t, []Permission{PermissionAll}, DefaultPermissionsOf(RolePlatformAdmin))

	// Exactly one role carries the wildcard by default.
	wildcardHolders := 0
	for _, r := range Roles() {
		for _, p := range DefaultPermissionsOf(r) {
			if p == PermissionAll {
				wildcardHolders++
			}
		}
	}
	require.Equal(t, 1, wildcardHolders)
}

func TestDefaultPermissionsOfReturnsCopy(t *testing.T) {
	defaults := DefaultPermissionsOf(RoleResident)
	require.NotEmpty(t, defaults)
	defaults[0] = PermissionAll
	require.NotContains(t, DefaultPermissionsOf(RoleResident), PermissionAll)
}

func TestParseRole(t *testing.T) {
	require.Equal(t, RoleCustomerAdmin, ParseRole("customer_admin"))
	require.Equal(t, RoleCustomerAdmin, ParseRole("  Customer_Admin "))
	require.Equal(t, RoleUnknown, ParseRole("superuser"))
	require.Equal(t, RoleUnknown, ParseRole(""))
}

func TestRolesOrderedByDescendingLevel(t *testing.T) {
	roles := Roles()
	require.Len(t, roles, 15)
	for i := 1; i < len(roles); i++ {
		require.GreaterOrEqual(t, LevelOf(roles[i-1]), LevelOf(roles[i]))
	}
	require.Equal(t, RolePlatformAdmin, roles[0])
}

func TestParsePermission(t *testing.T) {
	require.Equal(t, PermManageUsers, ParsePermission("manage_users"))
	require.Equal(t, PermissionAll, ParsePermission("*"))
	require.Equal(t, PermissionUnknown, ParsePermission("launch_rockets"))
	require.Equal(t, PermissionUnknown, ParsePermission(""))
}

func TestParsePermissionsDropsUnknownTokens(t *testing.T) {
	parsed := ParsePermissions([]string{"manage_users", "stale_token", "*", ""})
	require.Equal(t, []Permission{PermManageUsers, PermissionAll}, parsed)
}
