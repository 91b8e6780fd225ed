package workorders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/backend/internal/models"
)

// Repository handles work order persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a work orders repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ItemInput is one requested product line on a new order.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// Create inserts the order and its items in one transaction: line prices
// are captured from the product rows, stock is decremented, and the order
// total is computed. The order number must already be minted; a failed
// transaction burns the number but never produces a half-written order.
func (r *Repository) Create(ctx context.Context, o *models.WorkOrder, items []ItemInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertOrder = `INSERT INTO work_orders (id, tenant_id, client_id, number, description, status, total_cents, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3, NULLIF($4,''), $5, 0, $6)
		RETURNING id, created_at, updated_at`
	o.Status = models.OrderStatusPending
	if err := tx.QueryRow(ctx, insertOrder, o.TenantID, o.ClientID, o.Number, o.Description, o.Status, o.CreatedBy).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	var total int64
	for _, item := range items {
		var unit int64
		err := tx.QueryRow(ctx,
			`SELECT price_cents FROM products WHERE tenant_id = $1 AND id = $2`,
			o.TenantID, item.ProductID).Scan(&unit)
		if err == pgx.ErrNoRows {
			return fmt.Errorf("product %s not found in tenant", item.ProductID)
		}
		if err != nil {
			return fmt.Errorf("price lookup: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO work_order_items (id, work_order_id, product_id, quantity, unit_cents)
			VALUES (gen_random_uuid(), $1, $2, $3, $4)`,
			o.ID, item.ProductID, item.Quantity, unit); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`,
			o.TenantID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		total += unit * int64(item.Quantity)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE work_orders SET total_cents = $2 WHERE id = $1`, o.ID, total); err != nil {
		return fmt.Errorf("update total: %w", err)
	}
	o.TotalCents = total

	return tx.Commit(ctx)
}

// GetByID returns a work order, constrained to the tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.WorkOrder, error) {
	const q = `SELECT id, tenant_id, client_id, number, COALESCE(description,''), status, total_cents, created_by, created_at, updated_at
		FROM work_orders WHERE tenant_id = $1 AND id = $2`
	var o models.WorkOrder
	err := r.pool.QueryRow(ctx, q, tenantID, id).
		Scan(&o.ID, &o.TenantID, &o.ClientID, &o.Number, &o.Description, &o.Status, &o.TotalCents, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns the tenant's work orders, newest first.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.WorkOrder, error) {
	const q = `SELECT id, tenant_id, client_id, number, COALESCE(description,''), status, total_cents, created_by, created_at, updated_at
		FROM work_orders WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.WorkOrder
	for rows.Next() {
		var o models.WorkOrder
		if err := rows.Scan(&o.ID, &o.TenantID, &o.ClientID, &o.Number, &o.Description, &o.Status, &o.TotalCents, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// ListItems returns the order's line items.
func (r *Repository) ListItems(ctx context.Context, orderID uuid.UUID) ([]models.WorkOrderItem, error) {
	const q = `SELECT id, work_order_id, product_id, quantity, unit_cents
		FROM work_order_items WHERE work_order_id = $1`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.WorkOrderItem
	for rows.Next() {
		var it models.WorkOrderItem
		if err := rows.Scan(&it.ID, &it.WorkOrderID, &it.ProductID, &it.Quantity, &it.UnitCents); err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// UpdateStatus sets the order status, constrained to the tenant.
func (r *Repository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	const q = `UPDATE work_orders SET status = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	_, err := r.pool.Exec(ctx, q, tenantID, id, status)
	return err
}

// Delete removes a work order and its items (cascade).
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM work_orders WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}
