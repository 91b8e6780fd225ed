package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/backend/internal/models"
)

// Repository handles inventory persistence. Every query is tenant-scoped.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a products repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a product for the tenant.
func (r *Repository) Create(ctx context.Context, p *models.Product) error {
	const q = `INSERT INTO products (id, tenant_id, name, sku, price_cents, stock)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3,''), $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, p.TenantID, p.Name, p.SKU, p.PriceCents, p.Stock).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a product, constrained to the tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	const q = `SELECT id, tenant_id, name, COALESCE(sku,''), price_cents, stock, created_at, updated_at
		FROM products WHERE tenant_id = $1 AND id = $2`
	var p models.Product
	err := r.pool.QueryRow(ctx, q, tenantID, id).
		Scan(&p.ID, &p.TenantID, &p.Name, &p.SKU, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the tenant's products ordered by name.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error) {
	const q = `SELECT id, tenant_id, name, COALESCE(sku,''), price_cents, stock, created_at, updated_at
		FROM products WHERE tenant_id = $1 ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.SKU, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Update changes a product's fields, constrained to the tenant.
func (r *Repository) Update(ctx context.Context, p *models.Product) error {
	const q = `UPDATE products SET name = $3, sku = NULLIF($4,''), price_cents = $5, stock = $6, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`
	_, err := r.pool.Exec(ctx, q, p.TenantID, p.ID, p.Name, p.SKU, p.PriceCents, p.Stock)
	return err
}

// AdjustStock adds delta to the product's stock (negative to consume).
// Single statement so concurrent order items cannot lose updates.
func (r *Repository) AdjustStock(ctx context.Context, tenantID, id uuid.UUID, delta int) error {
	const q = `UPDATE products SET stock = stock + $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	_, err := r.pool.Exec(ctx, q, tenantID, id, delta)
	return err
}

// Delete removes a product, constrained to the tenant.
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}
