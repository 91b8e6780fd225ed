package models

import (
	"time"

	"github.com/google/uuid"
)

// Work order lifecycle states.
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusDelivered  = "delivered"
)

// WorkOrder is a repair/service job for a client. Number is the
// human-readable per-tenant order number (e.g. "ACM-0007") minted by the
// sequence generator before the row is inserted.
type WorkOrder struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	ClientID    uuid.UUID `json:"client_id"`
	Number      string    `json:"number"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	TotalCents  int64     `json:"total_cents"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WorkOrderItem is a product line on a work order. UnitCents is captured
// at creation time so later price changes do not rewrite history.
type WorkOrderItem struct {
	ID          uuid.UUID `json:"id"`
	WorkOrderID uuid.UUID `json:"work_order_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int       `json:"quantity"`
	UnitCents   int64     `json:"unit_cents"`
}
