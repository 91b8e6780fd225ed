package rbac

import "testing"

func TestPermissionsFor(t *testing.T) {
	tests := []struct {
		name      string
		role      Role
		view      bool
		edit      bool
		deletable bool
	}{
		{"administrator", RoleAdministrator, true, true, true},
		{"manager", RoleManager, true, true, true},
		{"staff", RoleStaff, true, true, false},
		{"no role", RoleNone, false, false, false},
		{"unknown role", Role("janitor"), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PermissionsFor(tt.role)
			if p.CanView() != tt.view {
				t.Errorf("CanView() = %v, want %v", p.CanView(), tt.view)
			}
			if p.CanEdit() != tt.edit {
				t.Errorf("CanEdit() = %v, want %v", p.CanEdit(), tt.edit)
			}
			if p.CanDelete() != tt.deletable {
				t.Errorf("CanDelete() = %v, want %v", p.CanDelete(), tt.deletable)
			}
		})
	}
}

func TestNoneIsEmpty(t *testing.T) {
	p := None()
	for _, perm := range []Permission{PermissionView, PermissionEdit, PermissionDelete} {
		if p.Has(perm) {
			t.Errorf("None() unexpectedly contains %q", perm)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{"administrator", "manager", "staff"} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "owner", "ADMINISTRATOR"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true, want false", role)
		}
	}
}
