package workorders

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/guard"
	"github.com/tallerhub/backend/internal/middleware"
	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/internal/sequence"
	"github.com/tallerhub/backend/internal/session"
	"github.com/tallerhub/backend/pkg/response"
)

// NumberMinter mints the next order number for a tenant.
type NumberMinter interface {
	NextOrderNumber(ctx context.Context, tenant *models.Tenant) (string, error)
}

// Handler handles work order HTTP endpoints.
type Handler struct {
	repo     *Repository
	minter   NumberMinter
	sessions *session.Manager
	logger   *zap.Logger
}

// NewHandler creates a work orders handler.
func NewHandler(repo *Repository, minter NumberMinter, sessions *session.Manager, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, minter: minter, sessions: sessions, logger: logger}
}

// ItemRequest is one product line in a create request.
type ItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest is the body for POST /orders.
type CreateOrderRequest struct {
	ClientID    uuid.UUID     `json:"client_id" binding:"required"`
	Description string        `json:"description"`
	Items       []ItemRequest `json:"items"`
}

// UpdateStatusRequest is the body for PATCH /orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Create handles POST /orders. The number is minted before anything is
// persisted; if minting fails the whole creation aborts, so an order can
// never exist without a uniquely minted number.
func (h *Handler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "client_id required, item quantities must be at least 1")
		return
	}

	sc := h.sessions.Get(c.Request.Context(), userID)
	tenant := sc.SelectedTenant()
	if tenant == nil || tenant.ID != tenantID {
		response.Forbidden(c, "select a workshop first")
		return
	}

	number, err := h.minter.NextOrderNumber(c.Request.Context(), tenant)
	if err != nil {
		if errors.Is(err, sequence.ErrSequenceUnavailable) {
			response.ServiceUnavailable(c, "order numbering unavailable, order not created")
			return
		}
		response.Internal(c, "failed to mint order number")
		return
	}

	order := &models.WorkOrder{
		TenantID:    tenantID,
		ClientID:    req.ClientID,
		Number:      number,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   userID,
	}
	items := make([]ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if err := h.repo.Create(c.Request.Context(), order, items); err != nil {
		h.logger.Error("create work order", zap.Error(err), zap.String("number", number))
		response.Internal(c, "failed to create work order")
		return
	}
	response.Created(c, order)
}

// List handles GET /orders.
func (h *Handler) List(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	list, err := h.repo.List(c.Request.Context(), tenantID)
	if err != nil {
		response.Internal(c, "failed to load work orders")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /orders/:id. Returns the order with its items.
func (h *Handler) GetByID(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	order, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		response.NotFound(c, "work order not found")
		return
	}
	items, err := h.repo.ListItems(c.Request.Context(), order.ID)
	if err != nil {
		response.Internal(c, "failed to load order items")
		return
	}
	response.OK(c, gin.H{"order": order, "items": items})
}

// UpdateStatus handles PATCH /orders/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status required")
		return
	}
	order, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		response.NotFound(c, "work order not found")
		return
	}
	if !ValidTransition(order.Status, req.Status) {
		response.BadRequest(c, "cannot move order from "+order.Status+" to "+req.Status)
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), tenantID, id, req.Status); err != nil {
		response.Internal(c, "failed to update status")
		return
	}
	order.Status = req.Status
	response.OK(c, order)
}

// Delete handles DELETE /orders/:id.
func (h *Handler) Delete(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), tenantID, id); err != nil {
		response.Internal(c, "failed to delete work order")
		return
	}
	response.NoContent(c)
}

// ValidTransition reports whether a status change follows the order
// lifecycle: pending -> in_progress -> completed -> delivered. Setting
// the current status again is allowed (idempotent updates).
func ValidTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusInProgress
	case models.OrderStatusInProgress:
		return to == models.OrderStatusCompleted
	case models.OrderStatusCompleted:
		return to == models.OrderStatusDelivered
	}
	return false
}
