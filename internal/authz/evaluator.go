package authz

// HasPermission reports whether a principal with the given role and
// explicit permission overrides holds the required permission.
//
// Precedence, short-circuiting on the first grant: explicit wildcard,
// explicit exact match, role-default wildcard, role-default exact match.
// Explicit overrides are consulted before role defaults so a user-level
// grant is never masked by a narrower default; with purely additive
// overrides the ordering only affects short-circuiting, but it is kept
// stable so adding revocation later does not disturb call sites.
//
// The function is total: an absent role, a nil override list, or tokens
// outside the vocabulary all evaluate to false, never to a panic.
func HasPermission(role Role, explicit []Permission, required Permission) bool {
	if role == RoleUnknown {
		return false
	}
	if required == PermissionUnknown {
		return false
	}
	for _, p := range explicit {
		if p == PermissionAll || p == required {
			return true
		}
	}
	for _, p := range roleDefaults[role] {
		if p == PermissionAll || p == required {
			return true
		}
	}
	return false
}

// HasMinimumRole reports whether role sits at or above the minimum in
// the hierarchy. An absent role has level 0 and therefore never meets a
// configured minimum.
func HasMinimumRole(role, minimum Role) bool {
	if role == RoleUnknown {
		return false
	}
	return LevelOf(role) >= LevelOf(minimum)
}

// HasAnyPermission reports whether at least one of the required
// permissions is held. An empty required list grants nothing.
func HasAnyPermission(role Role, explicit []Permission, required []Permission) bool {
	for _, p := range required {
		if HasPermission(role, explicit, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every required permission is held.
// An empty required list is vacuously true.
func HasAllPermissions(role Role, explicit []Permission, required []Permission) bool {
	for _, p := range required {
		if !HasPermission(role, explicit, p) {
			return false
		}
	}
	return true
}
