package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is an inventory item, scoped to a tenant. Prices are stored in
// cents to avoid float arithmetic on money.
type Product struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku,omitempty"`
	PriceCents int64     `json:"price_cents"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
