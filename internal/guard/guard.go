// Package guard gates tenant-scoped actions on the session state. Every
// mutating or sensitive route goes through RequirePermission; views that
// only need an active tenant use RequireTenantSelected. Denial is an
// explicit 403, never a panic.
package guard

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/middleware"
	"github.com/tallerhub/backend/internal/rbac"
	"github.com/tallerhub/backend/internal/session"
	"github.com/tallerhub/backend/pkg/response"
)

// ContextTenantID is the gin context key for the active tenant id, set
// once the guard has verified a selection.
const ContextTenantID = "tenant_id"

// TenantSelected reports whether the session has an active tenant.
func TenantSelected(sc *session.Context) bool {
	return sc.SelectedTenant() != nil
}

// HasPermission reports whether the session's resolved role grants the
// permission. Without a selected tenant there is no role, so the answer
// is always false: role cannot be resolved without a tenant.
func HasPermission(sc *session.Context, perm rbac.Permission) bool {
	if !TenantSelected(sc) {
		return false
	}
	return sc.Permissions().Has(perm)
}

// RequireTenantSelected blocks requests until a tenant is selected and
// publishes the active tenant id into the gin context.
func RequireTenantSelected(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		sc := sessions.Get(c.Request.Context(), userID)
		tenant := sc.SelectedTenant()
		if tenant == nil {
			response.Forbidden(c, "select a workshop first")
			c.Abort()
			return
		}
		c.Set(ContextTenantID, tenant.ID)
		c.Next()
	}
}

// RequirePermission blocks requests whose session lacks the permission in
// the active tenant. Implies RequireTenantSelected.
func RequirePermission(sessions *session.Manager, perm rbac.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		sc := sessions.Get(c.Request.Context(), userID)
		tenant := sc.SelectedTenant()
		if tenant == nil {
			response.Forbidden(c, "select a workshop first")
			c.Abort()
			return
		}
		if !sc.Permissions().Has(perm) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Set(ContextTenantID, tenant.ID)
		c.Next()
	}
}
