// Package rbac maps tenant roles to permissions. The mapping is a fixed
// table; nothing here touches storage or session state.
package rbac

// Role is the coarse permission tier a membership grants within a tenant.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleManager       Role = "manager"
	RoleStaff         Role = "staff"
	// RoleNone is the state before any membership is resolved (or when
	// resolution fails). It is never persisted.
	RoleNone Role = ""
)

// Permission is a fine-grained allowed action. Permissions are always
// derived from a role, never stored.
type Permission string

const (
	PermissionView   Permission = "view"
	PermissionEdit   Permission = "edit"
	PermissionDelete Permission = "delete"
)

// Permissions is the set of actions a role allows.
type Permissions struct {
	set map[Permission]struct{}
}

// Has reports whether the permission is in the set.
func (p Permissions) Has(perm Permission) bool {
	_, ok := p.set[perm]
	return ok
}

// CanView reports whether viewing is allowed.
func (p Permissions) CanView() bool { return p.Has(PermissionView) }

// CanEdit reports whether create/update is allowed.
func (p Permissions) CanEdit() bool { return p.Has(PermissionEdit) }

// CanDelete reports whether deletion is allowed.
func (p Permissions) CanDelete() bool { return p.Has(PermissionDelete) }

// None returns the empty permission set.
func None() Permissions {
	return Permissions{set: map[Permission]struct{}{}}
}

func permSet(perms ...Permission) Permissions {
	s := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return Permissions{set: s}
}

// PermissionsFor returns the permission set for a role. Total over all
// inputs: an unknown or empty role yields the empty set, never an error.
//
//	administrator  view edit delete
//	manager        view edit delete
//	staff          view edit
//	(none)         -
func PermissionsFor(role Role) Permissions {
	switch role {
	case RoleAdministrator, RoleManager:
		return permSet(PermissionView, PermissionEdit, PermissionDelete)
	case RoleStaff:
		return permSet(PermissionView, PermissionEdit)
	default:
		return None()
	}
}

// ValidRole reports whether the string names a storable role.
func ValidRole(role string) bool {
	switch Role(role) {
	case RoleAdministrator, RoleManager, RoleStaff:
		return true
	}
	return false
}
