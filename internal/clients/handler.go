package clients

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/guard"
	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/pkg/response"
)

// Handler handles client HTTP endpoints. Routes are mounted behind the
// access guard, so the tenant id is always present in context.
type Handler struct {
	repo *Repository
}

// NewHandler creates a clients handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ClientRequest is the body for create/update.
type ClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// List handles GET /clients.
func (h *Handler) List(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	list, err := h.repo.List(c.Request.Context(), tenantID)
	if err != nil {
		response.Internal(c, "failed to load clients")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /clients/:id.
func (h *Handler) GetByID(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	cl, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		response.NotFound(c, "client not found")
		return
	}
	response.OK(c, cl)
}

// Create handles POST /clients.
func (h *Handler) Create(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	cl := &models.Client{
		TenantID: tenantID,
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
	}
	if err := h.repo.Create(c.Request.Context(), cl); err != nil {
		response.Internal(c, "failed to create client")
		return
	}
	response.Created(c, cl)
}

// Update handles PATCH /clients/:id.
func (h *Handler) Update(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	cl := &models.Client{
		ID:       id,
		TenantID: tenantID,
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
	}
	if err := h.repo.Update(c.Request.Context(), cl); err != nil {
		response.Internal(c, "failed to update client")
		return
	}
	updated, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		response.NotFound(c, "client not found")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /clients/:id.
func (h *Handler) Delete(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), tenantID, id); err != nil {
		response.Internal(c, "failed to delete client")
		return
	}
	response.NoContent(c)
}
