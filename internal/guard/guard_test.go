package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/middleware"
	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/internal/rbac"
	"github.com/tallerhub/backend/internal/session"
)

type staticResolver struct {
	role rbac.Role
}

func (r staticResolver) ResolveRole(ctx context.Context, userID, tenantID uuid.UUID) (rbac.Role, error) {
	return r.role, nil
}

func newManagerWithRole(t *testing.T, userID uuid.UUID, tenant *models.Tenant, role rbac.Role) *session.Manager {
	t.Helper()
	m := session.NewManager(staticResolver{role: role}, nil, nil, nil)
	if tenant != nil {
		if err := m.SelectTenant(context.Background(), userID, tenant); err != nil {
			t.Fatalf("SelectTenant: %v", err)
		}
	}
	return m
}

func runMiddleware(userID uuid.UUID, mw gin.HandlerFunc) (int, bool) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.ContextUserID, userID)
	mw(c)
	return w.Code, c.IsAborted()
}

func TestDeniedWithoutTenant(t *testing.T) {
	userID := uuid.New()
	m := newManagerWithRole(t, userID, nil, rbac.RoleAdministrator)

	sc := m.Get(context.Background(), userID)
	if TenantSelected(sc) {
		t.Error("TenantSelected should be false with no selection")
	}
	if HasPermission(sc, rbac.PermissionEdit) {
		t.Error("HasPermission(edit) should be false with no tenant, regardless of role")
	}

	code, aborted := runMiddleware(userID, RequireTenantSelected(m))
	if code != http.StatusForbidden || !aborted {
		t.Errorf("RequireTenantSelected: code=%d aborted=%v, want 403 abort", code, aborted)
	}
	code, aborted = runMiddleware(userID, RequirePermission(m, rbac.PermissionEdit))
	if code != http.StatusForbidden || !aborted {
		t.Errorf("RequirePermission: code=%d aborted=%v, want 403 abort", code, aborted)
	}
}

func TestStaffCanEditNotDelete(t *testing.T) {
	userID := uuid.New()
	tenant := &models.Tenant{ID: uuid.New(), Name: "Acme Workshop"}
	m := newManagerWithRole(t, userID, tenant, rbac.RoleStaff)

	sc := m.Get(context.Background(), userID)
	if !HasPermission(sc, rbac.PermissionEdit) {
		t.Error("staff should pass the edit gate")
	}
	if HasPermission(sc, rbac.PermissionDelete) {
		t.Error("staff must not pass the delete gate")
	}

	if code, aborted := runMiddleware(userID, RequirePermission(m, rbac.PermissionEdit)); aborted {
		t.Errorf("edit gate aborted for staff (code=%d)", code)
	}
	if code, aborted := runMiddleware(userID, RequirePermission(m, rbac.PermissionDelete)); !aborted || code != http.StatusForbidden {
		t.Errorf("delete gate: code=%d aborted=%v, want 403 abort", code, aborted)
	}
}

func TestGuardPublishesTenantID(t *testing.T) {
	userID := uuid.New()
	tenant := &models.Tenant{ID: uuid.New(), Name: "Acme Workshop"}
	m := newManagerWithRole(t, userID, tenant, rbac.RoleManager)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.ContextUserID, userID)
	RequireTenantSelected(m)(c)

	got, ok := c.Get(ContextTenantID)
	if !ok {
		t.Fatal("tenant id not set in context")
	}
	if got.(uuid.UUID) != tenant.ID {
		t.Errorf("context tenant id = %v, want %v", got, tenant.ID)
	}
}
