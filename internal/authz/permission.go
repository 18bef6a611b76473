package authz

import "strings"

// Permission is an atomic capability token. The vocabulary is closed:
// tokens arriving from persisted data are parsed through ParsePermission
// and anything outside the vocabulary degrades to PermissionUnknown,
// which matches nothing.
type Permission string

// PermissionAll is the reserved wildcard granting every permission.
const PermissionAll Permission = "*"

// PermissionUnknown is the zero value for tokens outside the vocabulary.
const PermissionUnknown Permission = ""

// Platform capabilities.
const (
	PermManageUsers         Permission = "manage_users"
	PermManageRoles         Permission = "manage_roles"
	PermManageOrganizations Permission = "manage_organizations"
	PermManageSettings      Permission = "manage_settings"

	PermManageBilling Permission = "manage_billing"
	PermViewBilling   Permission = "view_billing"

	PermManageVehicles Permission = "manage_vehicles"
	PermViewVehicles   Permission = "view_vehicles"

	PermManageVisitors Permission = "manage_visitors"
	PermViewVisitors   Permission = "view_visitors"

	PermManageTickets Permission = "manage_tickets"
	PermViewTickets   Permission = "view_tickets"

	PermViewAnalytics Permission = "view_analytics"
)

var allPermissions = []Permission{
	PermManageUsers,
	PermManageRoles,
	PermManageOrganizations,
	PermManageSettings,
	PermManageBilling,
	PermViewBilling,
	PermManageVehicles,
	PermViewVehicles,
	PermManageVisitors,
	PermViewVisitors,
	PermManageTickets,
	PermViewTickets,
	PermViewAnalytics,
}

var permissionIndex = buildPermissionIndex()

func buildPermissionIndex() map[Permission]struct{} {
	idx := make(map[Permission]struct{}, len(allPermissions)+1)
	for _, p := range allPermissions {
		idx[p] = struct{}{}
	}
	idx[PermissionAll] = struct{}{}
	return idx
}

// AllPermissions returns the concrete permission vocabulary, excluding the
// wildcard.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// ParsePermission maps a raw token to a vocabulary member. Unknown tokens
// yield PermissionUnknown rather than an error so stale persisted strings
// fail closed.
func ParsePermission(raw string) Permission {
	p := Permission(strings.TrimSpace(strings.ToLower(raw)))
	if _, ok := permissionIndex[p]; ok {
		return p
	}
	return PermissionUnknown
}

// ParsePermissions parses a persisted token list, silently dropping
// unknown entries.
func ParsePermissions(raw []string) []Permission {
	perms := make([]Permission, 0, len(raw))
	for _, r := range raw {
		if p := ParsePermission(r); p != PermissionUnknown {
			perms = append(perms, p)
		}
	}
	return perms
}

// PermissionStrings converts a permission list back to raw tokens for
// persistence.
func PermissionStrings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
