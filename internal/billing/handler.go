package billing

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/guard"
	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/internal/workorders"
	"github.com/tallerhub/backend/pkg/queue"
	"github.com/tallerhub/backend/pkg/response"
)

// Handler handles invoice HTTP endpoints.
type Handler struct {
	repo   *Repository
	orders *workorders.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewHandler creates a billing handler.
func NewHandler(repo *Repository, orders *workorders.Repository, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, orders: orders, queue: q, logger: logger}
}

// CreateInvoiceRequest is the body for POST /invoices.
type CreateInvoiceRequest struct {
	WorkOrderID uuid.UUID `json:"work_order_id" binding:"required"`
}

// List handles GET /invoices.
func (h *Handler) List(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	list, err := h.repo.List(c.Request.Context(), tenantID)
	if err != nil {
		response.Internal(c, "failed to load invoices")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /invoices/:id.
func (h *Handler) GetByID(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid invoice id")
		return
	}
	inv, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		response.NotFound(c, "invoice not found")
		return
	}
	response.OK(c, inv)
}

// Create handles POST /invoices. Only completed or delivered orders can
// be invoiced; the draft is created synchronously and the issue job is
// enqueued for the worker.
func (h *Handler) Create(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "work_order_id required")
		return
	}
	order, err := h.orders.GetByID(c.Request.Context(), tenantID, req.WorkOrderID)
	if err != nil {
		response.NotFound(c, "work order not found")
		return
	}
	if order.Status != models.OrderStatusCompleted && order.Status != models.OrderStatusDelivered {
		response.BadRequest(c, "only completed orders can be invoiced")
		return
	}
	inv := &models.Invoice{TenantID: tenantID, WorkOrderID: order.ID}
	if err := h.repo.CreateDraft(c.Request.Context(), inv); err != nil {
		h.logger.Error("create invoice", zap.Error(err), zap.String("work_order_id", order.ID.String()))
		response.Internal(c, "failed to create invoice")
		return
	}
	if err := h.queue.EnqueueInvoiceIssue(c.Request.Context(), queue.InvoiceIssuePayload{
		InvoiceID: inv.ID,
		TenantID:  tenantID,
	}); err != nil {
		// The draft exists; issuing can be retried by creating the job
		// again, so surface the failure instead of hiding it.
		h.logger.Error("enqueue invoice issue", zap.Error(err), zap.String("invoice_id", inv.ID.String()))
		response.ServiceUnavailable(c, "invoice created but issuing is delayed, retry later")
		return
	}
	response.Created(c, inv)
}

// MarkPaid handles POST /invoices/:id/pay.
func (h *Handler) MarkPaid(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid invoice id")
		return
	}
	inv, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		response.NotFound(c, "invoice not found")
		return
	}
	if inv.Status != models.InvoiceStatusIssued {
		response.BadRequest(c, "only issued invoices can be paid")
		return
	}
	if err := h.repo.MarkPaid(c.Request.Context(), tenantID, id); err != nil {
		response.Internal(c, "failed to mark invoice paid")
		return
	}
	inv.Status = models.InvoiceStatusPaid
	response.OK(c, inv)
}
