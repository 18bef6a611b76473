package authz

import (
	"sort"
	"strings"
)

// Principal is the subject of an authorization check: a role plus the
// user-level permission overrides stored with the profile. The zero
// value represents an unauthenticated (or still-loading) subject, for
// which every predicate is false.
type Principal struct {
	Role        Role
	Permissions []Permission
}

// Anonymous is the unauthenticated principal.
var Anonymous = Principal{}

// Fingerprint returns a stable value key for the principal: role plus
// the sorted, deduplicated override list. Capability snapshots are
// memoized on this key, never on object identity, so re-authentication
// with an equal principal reuses the cached snapshot and a changed one
// never sees stale results.
func (p Principal) Fingerprint() string {
	if p.Role == RoleUnknown && len(p.Permissions) == 0 {
		return ""
	}
	perms := make([]string, 0, len(p.Permissions))
	seen := make(map[Permission]struct{}, len(p.Permissions))
	for _, perm := range p.Permissions {
		if _, ok := seen[perm]; ok {
			continue
		}
		seen[perm] = struct{}{}
		perms = append(perms, string(perm))
	}
	sort.Strings(perms)
	return string(p.Role) + "|" + strings.Join(perms, ",")
}

// Capabilities is an immutable snapshot of the predicates and derived
// booleans for one principal. Handlers and the navigation gate consume
// this instead of passing (role, overrides) pairs around.
type Capabilities struct {
	Principal Principal `json:"-"`

	IsAuthenticated bool `json:"is_authenticated"`
	IsPlatformAdmin bool `json:"is_platform_admin"`
	IsAdmin         bool `json:"is_admin"`

	CanManageUsers         bool `json:"can_manage_users"`
	CanManageOrganizations bool `json:"can_manage_organizations"`
	CanManageBilling       bool `json:"can_manage_billing"`
	CanViewBilling         bool `json:"can_view_billing"`
	CanManageVehicles      bool `json:"can_manage_vehicles"`
	CanViewVehicles        bool `json:"can_view_vehicles"`
	CanManageVisitors      bool `json:"can_manage_visitors"`
	CanViewVisitors        bool `json:"can_view_visitors"`
	CanManageTickets       bool `json:"can_manage_tickets"`
	CanViewTickets         bool `json:"can_view_tickets"`
	CanViewAnalytics       bool `json:"can_view_analytics"`
}

// CapabilitiesFor computes the capability snapshot for a principal. Pure
// function of the principal's value; the zero principal yields the
// all-false snapshot.
func CapabilitiesFor(p Principal) Capabilities {
	return Capabilities{
		Principal: p,

		IsAuthenticated: p.Role != RoleUnknown,
		IsPlatformAdmin: p.Role == RolePlatformAdmin,
		IsAdmin:         HasMinimumRole(p.Role, RoleCustomerAdmin),

		CanManageUsers:         HasPermission(p.Role, p.Permissions, PermManageUsers),
		CanManageOrganizations: HasPermission(p.Role, p.Permissions, PermManageOrganizations),
		CanManageBilling:       HasPermission(p.Role, p.Permissions, PermManageBilling),
		CanViewBilling:         HasPermission(p.Role, p.Permissions, PermViewBilling),
		CanManageVehicles:      HasPermission(p.Role, p.Permissions, PermManageVehicles),
		CanViewVehicles:        HasPermission(p.Role, p.Permissions, PermViewVehicles),
		CanManageVisitors:      HasPermission(p.Role, p.Permissions, PermManageVisitors),
		CanViewVisitors:        HasPermission(p.Role, p.Permissions, PermViewVisitors),
		CanManageTickets:       HasPermission(p.Role, p.Permissions, PermManageTickets),
		CanViewTickets:         HasPermission(p.Role, p.Permissions, PermViewTickets),
		CanViewAnalytics:       HasPermission(p.Role, p.Permissions, PermViewAnalytics),
	}
}

// Has reports whether the underlying principal holds the permission.
func (c Capabilities) Has(p Permission) bool {
	return HasPermission(c.Principal.Role, c.Principal.Permissions, p)
}

// HasAny reports whether at least one of the permissions is held.
func (c Capabilities) HasAny(perms ...Permission) bool {
	return HasAnyPermission(c.Principal.Role, c.Principal.Permissions, perms)
}

// HasAll reports whether every permission is held.
func (c Capabilities) HasAll(perms ...Permission) bool {
	return HasAllPermissions(c.Principal.Role, c.Principal.Permissions, perms)
}

// AtLeast reports whether the principal's role meets the minimum.
func (c Capabilities) AtLeast(minimum Role) bool {
	return HasMinimumRole(c.Principal.Role, minimum)
}
