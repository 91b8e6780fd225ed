package products

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/guard"
	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/pkg/response"
)

// Handler handles inventory HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a products handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ProductRequest is the body for create/update.
type ProductRequest struct {
	Name       string `json:"name" binding:"required"`
	SKU        string `json:"sku"`
	PriceCents int64  `json:"price_cents" binding:"min=0"`
	Stock      int    `json:"stock" binding:"min=0"`
}

// List handles GET /products.
func (h *Handler) List(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	list, err := h.repo.List(c.Request.Context(), tenantID)
	if err != nil {
		response.Internal(c, "failed to load products")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /products/:id.
func (h *Handler) GetByID(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		response.NotFound(c, "product not found")
		return
	}
	response.OK(c, p)
}

// Create handles POST /products.
func (h *Handler) Create(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required, price and stock must not be negative")
		return
	}
	p := &models.Product{
		TenantID:   tenantID,
		Name:       strings.TrimSpace(req.Name),
		SKU:        strings.TrimSpace(req.SKU),
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
	}
	if err := h.repo.Create(c.Request.Context(), p); err != nil {
		response.Internal(c, "failed to create product")
		return
	}
	response.Created(c, p)
}

// Update handles PATCH /products/:id.
func (h *Handler) Update(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required, price and stock must not be negative")
		return
	}
	p := &models.Product{
		ID:         id,
		TenantID:   tenantID,
		Name:       strings.TrimSpace(req.Name),
		SKU:        strings.TrimSpace(req.SKU),
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
	}
	if err := h.repo.Update(c.Request.Context(), p); err != nil {
		response.Internal(c, "failed to update product")
		return
	}
	updated, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		response.NotFound(c, "product not found")
		return
	}
	response.OK(c, updated)
}

// AdjustStockRequest is the body for POST /products/:id/stock.
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// AdjustStock handles POST /products/:id/stock: applies a relative stock
// change (restock with a positive delta, correction with a negative one).
func (h *Handler) AdjustStock(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "delta required and must not be zero")
		return
	}
	if err := h.repo.AdjustStock(c.Request.Context(), tenantID, id, req.Delta); err != nil {
		response.Internal(c, "failed to adjust stock")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		response.NotFound(c, "product not found")
		return
	}
	response.OK(c, p)
}

// Delete handles DELETE /products/:id.
func (h *Handler) Delete(c *gin.Context) {
	tenantID := c.MustGet(guard.ContextTenantID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), tenantID, id); err != nil {
		response.Internal(c, "failed to delete product")
		return
	}
	response.NoContent(c)
}
