package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapabilitiesForAnonymous(t *testing.T) {
	caps := CapabilitiesFor(Anonymous)
	require.False(t, caps.IsAuthenticated)
	require.False(t, caps.IsAdmin)
	require.False(t, caps.IsPlatformAdmin)
	require.False(t, caps.CanManageUsers)
	require.False(t, caps.CanViewTickets)
	require.False(t, caps.Has(PermViewTickets))
	require.False(t, caps.AtLeast(RoleFamilyMember))
}

func TestCapabilitiesForCustomerAdmin(t *testing.T) {
	caps := CapabilitiesFor(Principal{Role: RoleCustomerAdmin, Permissions: []Permission{PermViewAnalytics}})
	require.True(t, caps.IsAuthenticated)
	require.True(t, caps.IsAdmin)
	require.False(t, caps.IsPlatformAdmin)
	require.True(t, caps.CanManageUsers)
	require.True(t, caps.CanViewAnalytics)
	require.False(t, caps.CanManageOrganizations)
	require.True(t, caps.AtLeast(RoleResident))
	require.False(t, caps.AtLeast(RoleFranchiseAdmin))
}

func TestCapabilitiesForPlatformAdmin(t *testing.T) {
	caps := CapabilitiesFor(Principal{Role: RolePlatformAdmin})
	require.True(t, caps.IsPlatformAdmin)
	require.True(t, caps.IsAdmin)
	for _, p := range AllPermissions() {
		require.True(t, caps.Has(p))
	}
}

func TestFingerprintStableUnderOrderAndDuplicates(t *testing.T) {
	a := Principal{Role: RoleOwner, Permissions: []Permission{PermManageUsers, PermViewBilling}}
	b := Principal{Role: RoleOwner, Permissions: []Permission{PermViewBilling, PermManageUsers, PermViewBilling}}
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := Principal{Role: RoleOwner, Permissions: []Permission{PermManageUsers}}
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	require.Equal(t, "", Anonymous.Fingerprint())
}

func TestCacheMemoizesByValue(t *testing.T) {
	cache, err := NewCache(8)
	require.NoError(t, err)

	p := Principal{Role: RoleResident, Permissions: []Permission{PermManageUsers}}
	first := cache.For(p)
	second := cache.For(Principal{Role: RoleResident, Permissions: []Permission{PermManageUsers}})
	require.Equal(t, first, second)
	require.True(t, first.CanManageUsers)

	// A changed override list must not see the stale snapshot.
	demoted := cache.For(Principal{Role: RoleResident})
	require.False(t, demoted.CanManageUsers)
}

func TestCacheNilSafe(t *testing.T) {
	var cache *Cache
	caps := cache.For(Principal{Role: RoleTenant})
	require.True(t, caps.CanViewTickets)
}
