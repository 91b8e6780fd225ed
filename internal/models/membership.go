package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership links a user to a tenant with a role. UNIQUE(user_id, tenant_id)
// in the schema, so at most one row is authoritative per pair.
type Membership struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Role      string    `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
