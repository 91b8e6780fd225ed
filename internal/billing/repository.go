package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/backend/internal/models"
)

// Repository handles invoice persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a billing repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateDraft inserts a draft invoice for a work order, copying the
// order's total.
func (r *Repository) CreateDraft(ctx context.Context, inv *models.Invoice) error {
	const q = `INSERT INTO invoices (id, tenant_id, work_order_id, total_cents, status)
		SELECT gen_random_uuid(), $1, $2, total_cents, $3
		FROM work_orders WHERE tenant_id = $1 AND id = $2
		RETURNING id, total_cents, created_at, updated_at`
	inv.Status = models.InvoiceStatusDraft
	return r.pool.QueryRow(ctx, q, inv.TenantID, inv.WorkOrderID, inv.Status).
		Scan(&inv.ID, &inv.TotalCents, &inv.CreatedAt, &inv.UpdatedAt)
}

// GetByID returns an invoice, constrained to the tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	const q = `SELECT id, tenant_id, work_order_id, total_cents, status, issued_at, created_at, updated_at
		FROM invoices WHERE tenant_id = $1 AND id = $2`
	var inv models.Invoice
	err := r.pool.QueryRow(ctx, q, tenantID, id).
		Scan(&inv.ID, &inv.TenantID, &inv.WorkOrderID, &inv.TotalCents, &inv.Status, &inv.IssuedAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns the tenant's invoices, newest first.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Invoice, error) {
	const q = `SELECT id, tenant_id, work_order_id, total_cents, status, issued_at, created_at, updated_at
		FROM invoices WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.WorkOrderID, &inv.TotalCents, &inv.Status, &inv.IssuedAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// MarkIssued flips a draft invoice to issued. Already-issued invoices are
// left alone so a retried job stays idempotent.
func (r *Repository) MarkIssued(ctx context.Context, tenantID, id uuid.UUID, issuedAt time.Time) error {
	const q = `UPDATE invoices SET status = $3, issued_at = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND status = $5`
	_, err := r.pool.Exec(ctx, q, tenantID, id, models.InvoiceStatusIssued, issuedAt, models.InvoiceStatusDraft)
	return err
}

// MarkPaid records payment of an issued invoice.
func (r *Repository) MarkPaid(ctx context.Context, tenantID, id uuid.UUID) error {
	const q = `UPDATE invoices SET status = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND status = $4`
	_, err := r.pool.Exec(ctx, q, tenantID, id, models.InvoiceStatusPaid, models.InvoiceStatusIssued)
	return err
}
