package session

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/middleware"
	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/pkg/response"
)

// Handler exposes the session state over HTTP.
type Handler struct {
	manager *Manager
	logger  *zap.Logger
}

// NewHandler creates a session handler.
func NewHandler(manager *Manager, logger *zap.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

// StateResponse is the body for GET /session.
type StateResponse struct {
	Tenant      *models.Tenant `json:"tenant"`
	Role        string         `json:"role"`
	Permissions struct {
		View   bool `json:"view"`
		Edit   bool `json:"edit"`
		Delete bool `json:"delete"`
	} `json:"permissions"`
}

// GetState handles GET /session. Returns the selected tenant, resolved
// role and derived permissions; tenant is null when nothing is selected.
func (h *Handler) GetState(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	sc := h.manager.Get(c.Request.Context(), userID)

	var body StateResponse
	body.Tenant = sc.SelectedTenant()
	body.Role = string(sc.Role())
	perms := sc.Permissions()
	body.Permissions.View = perms.CanView()
	body.Permissions.Edit = perms.CanEdit()
	body.Permissions.Delete = perms.CanDelete()
	response.OK(c, body)
}

// Logout handles POST /auth/logout. The JWT stays valid until expiry;
// what must die immediately is the tenant selection and any resolved
// permissions.
func (h *Handler) Logout(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.manager.Clear(c.Request.Context(), userID); err != nil {
		h.logger.Warn("clear session", zap.Error(err), zap.String("user_id", userID.String()))
	}
	response.NoContent(c)
}
