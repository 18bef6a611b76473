package authz

// NavEntry declares one navigation item and its access requirement. An
// entry is tagged either with a permission list (all-of or any-of per
// RequireAll) or with a minimum role; when both are present each must
// pass. An entry with no requirement is visible to any authenticated
// principal.
type NavEntry struct {
	Label       string       `json:"label"`
	Path        string       `json:"path"`
	Permissions []Permission `json:"-"`
	RequireAll  bool         `json:"-"`
	MinimumRole Role         `json:"-"`
}

// Allowed reports whether the capability snapshot satisfies the entry's
// requirement tags.
func (e NavEntry) Allowed(caps Capabilities) bool {
	if !caps.IsAuthenticated {
		return false
	}
	if e.MinimumRole != RoleUnknown && !caps.AtLeast(e.MinimumRole) {
		return false
	}
	if len(e.Permissions) > 0 {
		if e.RequireAll {
			return caps.HasAll(e.Permissions...)
		}
		return caps.HasAny(e.Permissions...)
	}
	return true
}

// FilterNav returns the entries visible to the principal, preserving the
// original relative order.
func FilterNav(caps Capabilities, entries []NavEntry) []NavEntry {
	visible := make([]NavEntry, 0, len(entries))
	for _, e := range entries {
		if e.Allowed(caps) {
			visible = append(visible, e)
		}
	}
	return visible
}

// DefaultNavigation is the application menu served to the frontend,
// filtered per principal by FilterNav.
func DefaultNavigation() []NavEntry {
	return []NavEntry{
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "Organizations", Path: "/organizations", Permissions: []Permission{PermManageOrganizations}},
		{Label: "Users", Path: "/users", Permissions: []Permission{PermManageUsers}},
		{Label: "Billing", Path: "/billing", Permissions: []Permission{PermManageBilling, PermViewBilling}},
		{Label: "Vehicles", Path: "/vehicles", Permissions: []Permission{PermManageVehicles, PermViewVehicles}},
		{Label: "Visitors", Path: "/visitors", Permissions: []Permission{PermManageVisitors, PermViewVisitors}},
		{Label: "Helpdesk", Path: "/helpdesk", Permissions: []Permission{PermManageTickets, PermViewTickets}},
		{Label: "Analytics", Path: "/analytics", Permissions: []Permission{PermViewAnalytics}},
		{Label: "Settings", Path: "/settings", Permissions: []Permission{PermManageSettings}, MinimumRole: RoleCustomerAdmin},
	}
}
