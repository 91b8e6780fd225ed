package clients

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/backend/internal/models"
)

// Repository handles client persistence. Every query is tenant-scoped.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a clients repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a client for the tenant.
func (r *Repository) Create(ctx context.Context, cl *models.Client) error {
	const q = `INSERT INTO clients (id, tenant_id, name, email, phone, address)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, cl.TenantID, cl.Name, cl.Email, cl.Phone, cl.Address).
		Scan(&cl.ID, &cl.CreatedAt, &cl.UpdatedAt)
}

// GetByID returns a client, constrained to the tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	const q = `SELECT id, tenant_id, name, COALESCE(email,''), COALESCE(phone,''), COALESCE(address,''), created_at, updated_at
		FROM clients WHERE tenant_id = $1 AND id = $2`
	var cl models.Client
	err := r.pool.QueryRow(ctx, q, tenantID, id).
		Scan(&cl.ID, &cl.TenantID, &cl.Name, &cl.Email, &cl.Phone, &cl.Address, &cl.CreatedAt, &cl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

// List returns the tenant's clients ordered by name.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Client, error) {
	const q = `SELECT id, tenant_id, name, COALESCE(email,''), COALESCE(phone,''), COALESCE(address,''), created_at, updated_at
		FROM clients WHERE tenant_id = $1 ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Client
	for rows.Next() {
		var cl models.Client
		if err := rows.Scan(&cl.ID, &cl.TenantID, &cl.Name, &cl.Email, &cl.Phone, &cl.Address, &cl.CreatedAt, &cl.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &cl)
	}
	return list, rows.Err()
}

// Update changes a client's fields, constrained to the tenant.
func (r *Repository) Update(ctx context.Context, cl *models.Client) error {
	const q = `UPDATE clients SET name = $3, email = NULLIF($4,''), phone = NULLIF($5,''), address = NULLIF($6,''), updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`
	_, err := r.pool.Exec(ctx, q, cl.TenantID, cl.ID, cl.Name, cl.Email, cl.Phone, cl.Address)
	return err
}

// Delete removes a client, constrained to the tenant.
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}
