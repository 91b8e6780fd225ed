package tenants

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/auth"
	"github.com/tallerhub/backend/internal/guard"
	"github.com/tallerhub/backend/internal/middleware"
	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/internal/rbac"
	"github.com/tallerhub/backend/internal/session"
	"github.com/tallerhub/backend/pkg/response"
	"github.com/tallerhub/backend/pkg/storage"
)

// Handler handles tenant HTTP endpoints.
type Handler struct {
	repo     *Repository
	users    *auth.Repository
	sessions *session.Manager
	s3       *storage.S3 // nil disables logo upload
	logger   *zap.Logger
}

// NewHandler creates a tenants handler.
func NewHandler(repo *Repository, users *auth.Repository, sessions *session.Manager, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, users: users, sessions: sessions, s3: s3, logger: logger}
}

// CreateTenantRequest is the body for POST /tenants.
type CreateTenantRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateTenantRequest is the body for PATCH /tenants/:id.
type UpdateTenantRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AddMemberRequest is the body for POST /tenants/members.
type AddMemberRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Role    string `json:"role" binding:"required"`
	IsAdmin bool   `json:"is_admin"`
}

// UpdateMemberRequest is the body for PATCH /tenants/members/:userId.
type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required"`
}

// List handles GET /tenants. Returns the tenants the current user is a
// member of.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListTenantsForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrDirectoryUnavailable) {
			response.ServiceUnavailable(c, "workshop directory unavailable, try again")
			return
		}
		response.Internal(c, "failed to load workshops")
		return
	}
	response.OK(c, list)
}

// Create handles POST /tenants. The creator becomes an administrator
// member of the new tenant.
func (h *Handler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 1 || len(req.Name) > 255 {
		response.BadRequest(c, "name must be between 1 and 255 characters")
		return
	}
	t := &models.Tenant{Name: req.Name, Description: strings.TrimSpace(req.Description), CreatedBy: userID}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		h.logger.Error("create tenant", zap.Error(err))
		response.Internal(c, "failed to create workshop")
		return
	}
	if _, err := h.repo.AddMember(c.Request.Context(), t.ID, userID, rbac.RoleAdministrator, true); err != nil {
		response.Internal(c, "failed to add you as administrator")
		return
	}
	response.Created(c, t)
}

// Select handles POST /tenants/:id/select. Membership is required; the
// session then resolves the role for the pair and recomputes permissions.
func (h *Handler) Select(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid workshop id")
		return
	}
	tenant, err := h.repo.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		response.NotFound(c, "workshop not found")
		return
	}
	member, err := h.repo.IsMember(c.Request.Context(), userID, tenantID)
	if err != nil {
		response.ServiceUnavailable(c, "membership lookup failed, try again")
		return
	}
	if !member {
		response.Forbidden(c, "not a member of this workshop")
		return
	}
	if err := h.sessions.SelectTenant(c.Request.Context(), userID, tenant); err != nil {
		if errors.Is(err, session.ErrRoleResolutionFailed) {
			response.ServiceUnavailable(c, "role lookup failed, try again")
			return
		}
		response.Internal(c, "failed to select workshop")
		return
	}
	sc := h.sessions.Get(c.Request.Context(), userID)
	response.OK(c, gin.H{"tenant": tenant, "role": string(sc.Role())})
}

// Update handles PATCH /tenants/:id. Only tenant admins (or the creator)
// may change a workshop.
func (h *Handler) Update(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid workshop id")
		return
	}
	admin, err := h.repo.IsAdmin(c.Request.Context(), userID, tenantID)
	if err != nil || !admin {
		response.Forbidden(c, "workshop admin required")
		return
	}
	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	if err := h.repo.Update(c.Request.Context(), tenantID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description)); err != nil {
		response.Internal(c, "failed to update workshop")
		return
	}
	t, err := h.repo.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		response.Internal(c, "failed to load workshop")
		return
	}
	response.OK(c, t)
}

// Delete handles DELETE /tenants/:id. Admin only; all tenant-scoped data
// cascades.
func (h *Handler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid workshop id")
		return
	}
	admin, err := h.repo.IsAdmin(c.Request.Context(), userID, tenantID)
	if err != nil || !admin {
		response.Forbidden(c, "workshop admin required")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), tenantID); err != nil {
		response.Internal(c, "failed to delete workshop")
		return
	}
	// Deleting the active tenant would leave a dangling selection.
	sc := h.sessions.Get(c.Request.Context(), userID)
	if t := sc.SelectedTenant(); t != nil && t.ID == tenantID {
		if err := h.sessions.Clear(c.Request.Context(), userID); err != nil {
			h.logger.Warn("clear session after tenant delete", zap.Error(err))
		}
	}
	response.NoContent(c)
}

// ListMembers handles GET /tenants/members for the selected tenant.
func (h *Handler) ListMembers(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	members, err := h.repo.ListMembers(c.Request.Context(), tenantID)
	if err != nil {
		response.Internal(c, "failed to load members")
		return
	}
	response.OK(c, members)
}

// AddMember handles POST /tenants/members. Adds a user (by email) to the
// selected tenant with a role.
func (h *Handler) AddMember(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and role required")
		return
	}
	if !rbac.ValidRole(req.Role) {
		response.BadRequest(c, "role must be administrator, manager or staff")
		return
	}
	user, err := h.users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || user == nil {
		response.NotFound(c, "no user with that email")
		return
	}
	m, err := h.repo.AddMember(c.Request.Context(), tenantID, user.ID, rbac.Role(req.Role), req.IsAdmin)
	if err != nil {
		response.Internal(c, "failed to add member")
		return
	}
	response.Created(c, m)
}

// UpdateMember handles PATCH /tenants/members/:userId.
func (h *Handler) UpdateMember(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "role required")
		return
	}
	if !rbac.ValidRole(req.Role) {
		response.BadRequest(c, "role must be administrator, manager or staff")
		return
	}
	if err := h.repo.UpdateMemberRole(c.Request.Context(), tenantID, userID, rbac.Role(req.Role)); err != nil {
		response.Internal(c, "failed to update member")
		return
	}
	response.OK(c, gin.H{"user_id": userID, "role": req.Role})
}

// RemoveMember handles DELETE /tenants/members/:userId.
func (h *Handler) RemoveMember(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.RemoveMember(c.Request.Context(), tenantID, userID); err != nil {
		response.Internal(c, "failed to remove member")
		return
	}
	response.NoContent(c)
}

// UploadLogo handles POST /tenants/logo: multipart upload of the selected
// tenant's logo to S3.
func (h *Handler) UploadLogo(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "logo storage not configured")
		return
	}
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	file, header, err := c.Request.FormFile("logo")
	if err != nil {
		response.BadRequest(c, "logo file required")
		return
	}
	defer file.Close()
	if header.Size > storage.MaxLogoFileSize {
		response.BadRequest(c, "logo must be 5MB or smaller")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !storage.ValidLogoType(contentType, header.Filename) {
		response.BadRequest(c, "logo must be a jpeg, png or webp image")
		return
	}
	key := storage.LogoKey(tenantID.String(), header.Filename)
	if _, err := h.s3.Upload(c.Request.Context(), key, contentType, file, header.Size); err != nil {
		h.logger.Error("upload logo", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to upload logo")
		return
	}
	if err := h.repo.SetLogoKey(c.Request.Context(), tenantID, key); err != nil {
		response.Internal(c, "failed to save logo reference")
		return
	}
	response.OK(c, gin.H{"logo_key": key})
}

// LogoURL handles GET /tenants/logo-url: presigned download URL for the
// selected tenant's logo.
func (h *Handler) LogoURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "logo storage not configured")
		return
	}
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	t, err := h.repo.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		response.NotFound(c, "workshop not found")
		return
	}
	if t.LogoKey == "" {
		response.NotFound(c, "no logo uploaded")
		return
	}
	url, err := h.s3.PresignedDownloadURL(c.Request.Context(), t.LogoKey)
	if err != nil {
		response.Internal(c, "failed to sign logo url")
		return
	}
	response.OK(c, gin.H{"url": url})
}
