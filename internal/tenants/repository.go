// Package tenants handles workshop (tenant) persistence: the tenant rows,
// the membership join, and the directory listing users pick from.
package tenants

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/internal/rbac"
)

// ErrDirectoryUnavailable wraps storage failures while listing a user's
// tenants. Callers get this or a complete result, never a partial one.
var ErrDirectoryUnavailable = errors.New("tenant directory unavailable")

// Repository handles tenant and membership persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tenants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create creates a tenant.
func (r *Repository) Create(ctx context.Context, t *models.Tenant) error {
	const q = `INSERT INTO tenants (id, name, description, created_by)
		VALUES (gen_random_uuid(), $1, NULLIF($2,''), $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.Name, t.Description, t.CreatedBy).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a tenant by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	const q = `SELECT id, name, COALESCE(description,''), COALESCE(logo_key,''), created_by, created_at, updated_at
		FROM tenants WHERE id = $1`
	var t models.Tenant
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.LogoKey, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update changes name and description.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description string) error {
	const q = `UPDATE tenants SET name = $2, description = NULLIF($3,''), updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, name, description)
	return err
}

// SetLogoKey stores the S3 object key of the tenant logo.
func (r *Repository) SetLogoKey(ctx context.Context, id uuid.UUID, key string) error {
	const q = `UPDATE tenants SET logo_key = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, key)
	return err
}

// Delete removes a tenant. Memberships, sequences and tenant-scoped rows
// cascade via foreign keys.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	return err
}

// ListTenantsForUser returns the tenants the user belongs to: membership
// ids in join order (created_at ASC), tenant rows sorted by name for
// display. A user with no memberships gets an empty slice, not an error.
func (r *Repository) ListTenantsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Tenant, error) {
	return listDirectory(ctx, r, userID)
}

// MembershipTenantIDs returns the ids of the tenants the user belongs to,
// in join order (oldest membership first).
func (r *Repository) MembershipTenantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT tenant_id FROM memberships WHERE user_id = $1 GROUP BY tenant_id ORDER BY MIN(created_at) ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TenantsByID returns the tenant rows for the ids, ordered by name.
func (r *Repository) TenantsByID(ctx context.Context, ids []uuid.UUID) ([]*models.Tenant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, COALESCE(description,''), COALESCE(logo_key,''), created_by, created_at, updated_at
		FROM tenants WHERE id = ANY($1) ORDER BY name ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.LogoKey, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// AddMember adds (or re-roles) a user in a tenant and returns the
// resulting membership row. The upsert keeps the one-row-per-(user,
// tenant) invariant.
func (r *Repository) AddMember(ctx context.Context, tenantID, userID uuid.UUID, role rbac.Role, isAdmin bool) (*models.Membership, error) {
	const q = `INSERT INTO memberships (id, user_id, tenant_id, role, is_admin)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		ON CONFLICT (user_id, tenant_id) DO UPDATE SET role = EXCLUDED.role, is_admin = EXCLUDED.is_admin, updated_at = NOW()
		RETURNING id, user_id, tenant_id, role, is_admin, created_at, updated_at`
	var m models.Membership
	err := r.pool.QueryRow(ctx, q, userID, tenantID, string(role), isAdmin).
		Scan(&m.ID, &m.UserID, &m.TenantID, &m.Role, &m.IsAdmin, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RemoveMember revokes a membership.
func (r *Repository) RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM memberships WHERE tenant_id = $1 AND user_id = $2`, tenantID, userID)
	return err
}

// UpdateMemberRole changes a member's role.
func (r *Repository) UpdateMemberRole(ctx context.Context, tenantID, userID uuid.UUID, role rbac.Role) error {
	const q = `UPDATE memberships SET role = $3, updated_at = NOW() WHERE tenant_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, q, tenantID, userID, string(role))
	return err
}

// ResolveRole returns the role the user holds in the tenant, RoleNone if
// there is no membership. The oldest row wins should a legacy table hold
// duplicates.
func (r *Repository) ResolveRole(ctx context.Context, userID, tenantID uuid.UUID) (rbac.Role, error) {
	const q = `SELECT role FROM memberships WHERE user_id = $1 AND tenant_id = $2 ORDER BY created_at ASC LIMIT 1`
	var role string
	err := r.pool.QueryRow(ctx, q, userID, tenantID).Scan(&role)
	if err == pgx.ErrNoRows {
		return rbac.RoleNone, nil
	}
	if err != nil {
		return rbac.RoleNone, err
	}
	return rbac.Role(role), nil
}

// IsMember reports whether the user has any membership in the tenant.
func (r *Repository) IsMember(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM memberships WHERE user_id = $1 AND tenant_id = $2)`
	var ok bool
	if err := r.pool.QueryRow(ctx, q, userID, tenantID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// IsAdmin reports whether the user administers the tenant (admin flag or
// tenant creator).
func (r *Repository) IsAdmin(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM memberships WHERE user_id = $1 AND tenant_id = $2 AND is_admin
		UNION
		SELECT 1 FROM tenants WHERE id = $2 AND created_by = $1)`
	var ok bool
	if err := r.pool.QueryRow(ctx, q, userID, tenantID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Member is a membership row joined with user details.
type Member struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	IsAdmin  bool      `json:"is_admin"`
	AddedAt  time.Time `json:"added_at"`
}

// ListMembers returns the tenant's members in join order.
func (r *Repository) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]Member, error) {
	const q = `SELECT m.id, m.user_id, u.email, COALESCE(u.full_name, ''), m.role, m.is_admin, m.created_at
		FROM memberships m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.tenant_id = $1
		ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.UserID, &m.Email, &m.FullName, &m.Role, &m.IsAdmin, &m.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
