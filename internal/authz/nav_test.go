package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterNavPreservesOrder(t *testing.T) {
	entries := []NavEntry{
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "Billing", Path: "/billing", Permissions: []Permission{PermViewBilling}},
		{Label: "Helpdesk", Path: "/helpdesk", Permissions: []Permission{PermViewTickets}},
		{Label: "Users", Path: "/users", Permissions: []Permission{PermManageUsers}},
	}

	caps := CapabilitiesFor(Principal{Role: RoleResident})
	visible := FilterNav(caps, entries)

	labels := make([]string, 0, len(visible))
	for _, e := range visible {
		labels = append(labels, e.Label)
	}
	require.Equal(t, []string{"Dashboard", "Billing", "Helpdesk"}, labels)
}

func TestFilterNavAnonymousSeesNothing(t *testing.T) {
	visible := FilterNav(CapabilitiesFor(Anonymous), DefaultNavigation())
	require.Empty(t, visible)
}

func TestNavEntryRequireAll(t *testing.T) {
	entry := NavEntry{Permissions: []Permission{PermViewBilling, PermManageBilling}, RequireAll: true}

	require.False(t, entry.Allowed(CapabilitiesFor(Principal{Role: RoleResident})))
	require.True(t, entry.Allowed(CapabilitiesFor(Principal{Role: RoleSocietyTreasurer})))

	entry.RequireAll = false
	require.True(t, entry.Allowed(CapabilitiesFor(Principal{Role: RoleResident})))
}

func TestNavEntryMinimumRoleCombinesWithPermissions(t *testing.T) {
	entry := NavEntry{
		Permissions: []Permission{PermManageSettings},
		MinimumRole: RoleCustomerAdmin,
	}

	// A resident with an explicit settings grant still misses the role bar.
	withGrant := CapabilitiesFor(Principal{Role: RoleResident, Permissions: []Permission{PermManageSettings}})
	require.False(t, entry.Allowed(withGrant))

	admin := CapabilitiesFor(Principal{Role: RoleCustomerAdmin})
	require.True(t, entry.Allowed(admin))
}

func TestDefaultNavigationForPlatformAdmin(t *testing.T) {
	all := DefaultNavigation()
	visible := FilterNav(CapabilitiesFor(Principal{Role: RolePlatformAdmin}), all)
	require.Len(t, visible, len(all))
}
