package tenants

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/models"
)

// directoryStore is the storage surface the tenant directory reads:
// membership ids in join order, tenant rows by id sorted by name.
type directoryStore interface {
	MembershipTenantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	TenantsByID(ctx context.Context, ids []uuid.UUID) ([]*models.Tenant, error)
}

// listDirectory resolves the workshops a user can pick from. A user with
// no memberships gets an empty list, not an error; any storage failure
// surfaces as ErrDirectoryUnavailable with nothing partial alongside it.
func listDirectory(ctx context.Context, store directoryStore, userID uuid.UUID) ([]*models.Tenant, error) {
	ids, err := store.MembershipTenantIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if len(ids) == 0 {
		return []*models.Tenant{}, nil
	}
	list, err := store.TenantsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return list, nil
}
