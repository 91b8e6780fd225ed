package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a workshop: the unit of data partitioning. Every client,
// product, work order and invoice belongs to exactly one tenant.
type Tenant struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	LogoKey     string    `json:"logo_key,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
