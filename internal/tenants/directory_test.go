package tenants

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/models"
)

// mockDirectoryStore returns canned ids and tenants, with injectable
// errors per call.
type mockDirectoryStore struct {
	ids        []uuid.UUID
	tenants    []*models.Tenant
	idsErr     error
	tenantsErr error

	askedIDs []uuid.UUID // ids passed to TenantsByID
}

func (m *mockDirectoryStore) MembershipTenantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if m.idsErr != nil {
		return nil, m.idsErr
	}
	return m.ids, nil
}

func (m *mockDirectoryStore) TenantsByID(ctx context.Context, ids []uuid.UUID) ([]*models.Tenant, error) {
	m.askedIDs = ids
	if m.tenantsErr != nil {
		return nil, m.tenantsErr
	}
	return m.tenants, nil
}

func TestDirectoryEmptyForUserWithoutMemberships(t *testing.T) {
	store := &mockDirectoryStore{}
	list, err := listDirectory(context.Background(), store, uuid.New())
	if err != nil {
		t.Fatalf("listDirectory: %v", err)
	}
	if list == nil {
		t.Fatal("expected an empty slice, got nil")
	}
	if len(list) != 0 {
		t.Fatalf("expected no tenants, got %d", len(list))
	}
	if store.askedIDs != nil {
		t.Error("tenant rows were fetched for a user with no memberships")
	}
}

func TestDirectoryUnavailableOnMembershipFailure(t *testing.T) {
	store := &mockDirectoryStore{idsErr: errors.New("connection refused")}
	_, err := listDirectory(context.Background(), store, uuid.New())
	if !errors.Is(err, ErrDirectoryUnavailable) {
		t.Fatalf("expected ErrDirectoryUnavailable, got %v", err)
	}
}

func TestDirectoryUnavailableOnTenantFailure(t *testing.T) {
	store := &mockDirectoryStore{
		ids:        []uuid.UUID{uuid.New()},
		tenantsErr: errors.New("connection refused"),
	}
	list, err := listDirectory(context.Background(), store, uuid.New())
	if !errors.Is(err, ErrDirectoryUnavailable) {
		t.Fatalf("expected ErrDirectoryUnavailable, got %v", err)
	}
	if list != nil {
		t.Error("a failed listing must not return partial results")
	}
}

func TestDirectoryPassesMembershipOrderThrough(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	store := &mockDirectoryStore{
		ids: []uuid.UUID{first, second},
		tenants: []*models.Tenant{
			{ID: second, Name: "Alpha Garage"},
			{ID: first, Name: "Beta Motors"},
		},
	}
	list, err := listDirectory(context.Background(), store, uuid.New())
	if err != nil {
		t.Fatalf("listDirectory: %v", err)
	}
	if len(store.askedIDs) != 2 || store.askedIDs[0] != first || store.askedIDs[1] != second {
		t.Errorf("membership join order not preserved in lookup: %v", store.askedIDs)
	}
	// Display order is whatever the tenant store returns (sorted by name).
	if len(list) != 2 || list[0].Name != "Alpha Garage" {
		t.Errorf("tenant rows not returned in store order: %+v", list)
	}
}
