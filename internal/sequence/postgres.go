package sequence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/backend/internal/models"
)

// PostgresStore advances the counter in the database. The upsert below is
// one statement, so two concurrent orders for the same tenant can never
// observe the same value.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a sequence store over the pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Next returns the counter row at 1 on the tenant's first call (creating
// it) and with the incremented value on every later call.
func (s *PostgresStore) Next(ctx context.Context, tenantID uuid.UUID) (*models.Sequence, error) {
	const q = `INSERT INTO sequences (tenant_id, sequential) VALUES ($1, 1)
		ON CONFLICT (tenant_id) DO UPDATE SET sequential = sequences.sequential + 1, updated_at = NOW()
		RETURNING tenant_id, sequential, created_at, updated_at`
	var seq models.Sequence
	err := s.pool.QueryRow(ctx, q, tenantID).
		Scan(&seq.TenantID, &seq.Sequential, &seq.CreatedAt, &seq.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &seq, nil
}
