package users

import (
	"time"

	"github.com/societyhub/societyhub/internal/authz"
)

// User represents a user account for management.
type User struct {
	ID          int64
	OrgID       int64
	Email       string
	Name        string
	Role        authz.Role
	Permissions []string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EffectivePermissions resolves the user's effective permission set: role
// defaults plus explicit overrides, with a wildcard expanded to the full
// vocabulary. Used by the permission editor so an administrator sees the
// target user's set, not their own.
func (u User) EffectivePermissions() []authz.Permission {
	role := u.Role
	explicit := authz.ParsePermissions(u.Permissions)

	effective := make([]authz.Permission, 0, len(explicit))
	seen := make(map[authz.Permission]struct{})
	var add func(perms []authz.Permission)
	add = func(perms []authz.Permission) {
		for _, p := range perms {
			if p == authz.PermissionAll {
				add(authz.AllPermissions())
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			effective = append(effective, p)
		}
	}
	add(explicit)
	add(authz.DefaultPermissionsOf(role))
	return effective
}
