package models

import (
	"time"

	"github.com/google/uuid"
)

// Sequence is the per-tenant order-number counter. Exactly one row per
// tenant, created lazily on the first order and incremented atomically
// in the database on every subsequent one.
type Sequence struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	Sequential int64     `json:"sequential"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
