package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice states.
const (
	InvoiceStatusDraft  = "draft"
	InvoiceStatusIssued = "issued"
	InvoiceStatusPaid   = "paid"
)

// Invoice bills a completed work order. Issuing is asynchronous: the
// handler creates a draft and enqueues an issue job; the worker flips the
// status once the job runs.
type Invoice struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	WorkOrderID uuid.UUID  `json:"work_order_id"`
	TotalCents  int64      `json:"total_cents"`
	Status      string     `json:"status"`
	IssuedAt    *time.Time `json:"issued_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
