// Package session owns the per-user tenant selection: which tenant is
// active, the role the user holds there, and the permissions derived from
// it. All mutation funnels through Context methods; nothing else writes
// this state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/internal/rbac"
)

var (
	// ErrNoTenantSelected is returned by operations that need an active tenant.
	ErrNoTenantSelected = errors.New("no tenant selected")
	// ErrRoleResolutionFailed wraps membership lookup failures. The context
	// falls back to the no-role state, never to a previous tenant's role.
	ErrRoleResolutionFailed = errors.New("role resolution failed")
)

// Resolver looks up the role a user holds in a tenant. A user with no
// membership resolves to rbac.RoleNone without error.
type Resolver interface {
	ResolveRole(ctx context.Context, userID, tenantID uuid.UUID) (rbac.Role, error)
}

// Context is one user's tenant selection state. Selections may race (a
// user double-clicking between tenants): each selection bumps an epoch,
// and a role resolution is applied only if its epoch is still current
// when it completes, so the most recent selection always wins.
type Context struct {
	userID uuid.UUID

	mu     sync.Mutex
	tenant *models.Tenant
	role   rbac.Role
	perms  rbac.Permissions
	epoch  uint64
}

// NewContext creates an empty context for the user: no tenant, no role,
// no permissions.
func NewContext(userID uuid.UUID) *Context {
	return &Context{userID: userID, role: rbac.RoleNone, perms: rbac.None()}
}

// UserID returns the owning user.
func (c *Context) UserID() uuid.UUID { return c.userID }

// SelectTenant makes the tenant active and resolves the user's role in it.
// The previous tenant's role and permissions are discarded before the
// lookup starts, so no permission can leak across tenants even while the
// resolution is in flight. Selecting the tenant that is already selected
// is not an error; the role is simply re-fetched.
//
// The returned bool reports whether this selection was still current when
// its resolution completed. A newer selection or a Clear arriving mid-flight
// makes it false; callers acting on the outcome (persisting the selection,
// for one) must do nothing in that case.
//
// On resolution failure the context stays on the new tenant with the
// empty permission set and ErrRoleResolutionFailed is returned.
func (c *Context) SelectTenant(ctx context.Context, tenant *models.Tenant, resolver Resolver) (bool, error) {
	if tenant == nil {
		return false, ErrNoTenantSelected
	}
	t := *tenant

	c.mu.Lock()
	c.epoch++
	token := c.epoch
	c.tenant = &t
	c.role = rbac.RoleNone
	c.perms = rbac.None()
	c.mu.Unlock()

	role, err := resolver.ResolveRole(ctx, c.userID, t.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != token {
		// A newer selection (or a logout) happened while we were waiting
		// on the store; this result is stale and must not be applied.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRoleResolutionFailed, err)
	}
	c.role = role
	c.perms = rbac.PermissionsFor(role)
	return true, nil
}

// SelectedTenant returns the active tenant, or nil if none is selected.
func (c *Context) SelectedTenant() *models.Tenant {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tenant == nil {
		return nil
	}
	t := *c.tenant
	return &t
}

// Role returns the resolved role for the active tenant (RoleNone while
// resolving or when no tenant is selected).
func (c *Context) Role() rbac.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// Permissions returns the derived permission set.
func (c *Context) Permissions() rbac.Permissions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perms
}

// Clear drops the selection, role and permissions unconditionally and
// invalidates any in-flight role resolution.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.tenant = nil
	c.role = rbac.RoleNone
	c.perms = rbac.None()
}
