package authz

import (
	"fmt"
	"sort"
	"strings"
)

// Role names a position in the organizational hierarchy. The set is
// closed; RoleUnknown is the zero value and carries no privileges.
type Role string

// RoleUnknown represents an absent or unrecognized role.
const RoleUnknown Role = ""

// The organizational hierarchy, most privileged first.
const (
	RolePlatformAdmin    Role = "platform_admin"
	RoleFranchiseAdmin   Role = "franchise_admin"
	RoleCustomerAdmin    Role = "customer_admin"
	RoleSocietyPresident Role = "society_president"
	RoleSocietySecretary Role = "society_secretary"
	RoleSocietyTreasurer Role = "society_treasurer"
	RolePropertyManager  Role = "property_manager"
	RoleCommitteeMember  Role = "committee_member"
	RoleSecurityStaff    Role = "security_staff"
	RoleMaintenanceStaff Role = "maintenance_staff"
	RoleOperator         Role = "operator"
	RoleOwner            Role = "owner"
	RoleResident         Role = "resident"
	RoleTenant           Role = "tenant"
	RoleFamilyMember     Role = "family_member"
)

// roleLevels assigns each role its hierarchy level. Levels are used only
// for relative comparison; conceptually parallel roles may share a level
// (the society secretary and treasurer do).
var roleLevels = map[Role]int{
	RolePlatformAdmin:    100,
	RoleFranchiseAdmin:   80,
	RoleCustomerAdmin:    70,
	RoleSocietyPresident: 60,
	RoleSocietySecretary: 55,
	RoleSocietyTreasurer: 55,
	RolePropertyManager:  50,
	RoleCommitteeMember:  45,
	RoleSecurityStaff:    30,
	RoleMaintenanceStaff: 28,
	RoleOperator:         25,
	RoleOwner:            20,
	RoleResident:         15,
	RoleTenant:           12,
	RoleFamilyMember:     10,
}

// roleDefaults assigns each role its default permission set. Only the
// platform admin carries the wildcard. User-level overrides are additive
// on top of these; there is no subtractive grant.
var roleDefaults = map[Role][]Permission{
	RolePlatformAdmin: {PermissionAll},
	RoleFranchiseAdmin: {
		PermManageUsers, PermManageRoles, PermManageOrganizations, PermManageSettings,
		PermManageBilling, PermViewBilling,
		PermManageVehicles, PermViewVehicles,
		PermManageVisitors, PermViewVisitors,
		PermManageTickets, PermViewTickets,
		PermViewAnalytics,
	},
	RoleCustomerAdmin: {
		PermManageUsers, PermManageSettings,
		PermManageBilling, PermViewBilling,
		PermManageVehicles, PermViewVehicles,
		PermManageVisitors, PermViewVisitors,
		PermManageTickets, PermViewTickets,
		PermViewAnalytics,
	},
	RoleSocietyPresident: {
		PermViewBilling,
		PermManageVehicles, PermViewVehicles,
		PermManageVisitors, PermViewVisitors,
		PermManageTickets, PermViewTickets,
		PermViewAnalytics,
	},
	RoleSocietySecretary: {
		PermViewBilling, PermViewVehicles,
		PermManageVisitors, PermViewVisitors,
		PermManageTickets, PermViewTickets,
	},
	RoleSocietyTreasurer: {
		PermManageBilling, PermViewBilling,
		PermViewAnalytics, PermViewTickets,
	},
	RolePropertyManager: {
		PermViewBilling,
		PermManageVehicles, PermViewVehicles,
		PermManageVisitors, PermViewVisitors,
		PermManageTickets, PermViewTickets,
	},
	RoleCommitteeMember: {
		PermViewBilling, PermViewVehicles, PermViewVisitors,
		PermViewTickets, PermViewAnalytics,
	},
	RoleSecurityStaff: {
		PermViewVehicles, PermManageVisitors, PermViewVisitors,
	},
	RoleMaintenanceStaff: {
		PermManageTickets, PermViewTickets,
	},
	RoleOperator: {
		PermViewVehicles, PermViewVisitors,
	},
	RoleOwner: {
		PermViewBilling, PermViewTickets, PermViewVisitors,
	},
	RoleResident: {
		PermViewBilling, PermViewTickets,
	},
	RoleTenant: {
		PermViewTickets,
	},
	RoleFamilyMember: {},
}

// LevelOf returns the hierarchy level for a role. Unknown or absent
// roles map to 0, the weakest possible level; this never errors so
// authorization checks stay total.
func LevelOf(role Role) int {
	return roleLevels[role]
}

// DefaultPermissionsOf returns a copy of the role's default permission
// set. Unknown or absent roles yield an empty set.
func DefaultPermissionsOf(role Role) []Permission {
	defaults := roleDefaults[role]
	out := make([]Permission, len(defaults))
	copy(out, defaults)
	return out
}

// ParseRole maps a raw token to a vocabulary member; unknown tokens yield
// RoleUnknown.
func ParseRole(raw string) Role {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	if _, ok := roleLevels[role]; ok {
		return role
	}
	return RoleUnknown
}

// Roles returns the closed role set ordered by descending level, name
// breaking ties.
func Roles() []Role {
	out := make([]Role, 0, len(roleLevels))
	for role := range roleLevels {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := roleLevels[out[i]], roleLevels[out[j]]
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return out
}

// ValidateRegistry asserts the registry configuration invariants: the
// level table and the default-permission table must cover the same role
// set, every level must be positive, and every default set must only
// contain vocabulary members. Called at process start so a configuration
// mistake fails fast instead of silently denying (or granting) at
// request time.
func ValidateRegistry() error {
	for role, level := range roleLevels {
		if level <= 0 {
			return fmt.Errorf("authz: role %q has non-positive level %d", role, level)
		}
		if _, ok := roleDefaults[role]; !ok {
			return fmt.Errorf("authz: role %q has a level but no default permission set", role)
		}
	}
	for role, defaults := range roleDefaults {
		if _, ok := roleLevels[role]; !ok {
			return fmt.Errorf("authz: role %q has default permissions but no level", role)
		}
		for _, p := range defaults {
			if _, ok := permissionIndex[p]; !ok {
				return fmt.Errorf("authz: role %q grants unknown permission %q", role, p)
			}
		}
	}
	return nil
}
