package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/rbac"
)

// recordingSelectionStore captures every persistence call so tests can
// assert which selections actually reached the store.
type recordingSelectionStore struct {
	mu      sync.Mutex
	saved   []uuid.UUID
	deletes int
}

func (s *recordingSelectionStore) SaveSelection(ctx context.Context, userID, tenantID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, tenantID)
	return nil
}

func (s *recordingSelectionStore) LoadSelection(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

func (s *recordingSelectionStore) DeleteSelection(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	return nil
}

func (s *recordingSelectionStore) savedIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.saved...)
}

func TestManagerGetReturnsSameContext(t *testing.T) {
	user := uuid.New()
	m := NewManager(&mockResolver{roles: map[uuid.UUID]rbac.Role{}}, nil, nil, nil)

	a := m.Get(context.Background(), user)
	b := m.Get(context.Background(), user)
	if a != b {
		t.Fatal("Get returned different contexts for the same user")
	}
	if a.SelectedTenant() != nil {
		t.Error("fresh context should have no tenant")
	}
}

func TestManagerClearResetsEverything(t *testing.T) {
	user := uuid.New()
	tenant := newTenant("Acme Workshop")
	resolver := &mockResolver{roles: map[uuid.UUID]rbac.Role{tenant.ID: rbac.RoleAdministrator}}
	m := NewManager(resolver, nil, nil, nil)

	if err := m.SelectTenant(context.Background(), user, tenant); err != nil {
		t.Fatalf("SelectTenant: %v", err)
	}
	sc := m.Get(context.Background(), user)
	if !sc.Permissions().CanDelete() {
		t.Fatal("administrator should be able to delete")
	}

	if err := m.Clear(context.Background(), user); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	sc = m.Get(context.Background(), user)
	if sc.SelectedTenant() != nil {
		t.Error("tenant survived logout")
	}
	if sc.Permissions().CanView() {
		t.Error("permissions survived logout")
	}
}

func TestSupersededSelectionNotPersisted(t *testing.T) {
	user := uuid.New()
	a := newTenant("Alpha")
	b := newTenant("Beta")
	resolver := &mockResolver{
		roles:   map[uuid.UUID]rbac.Role{a.ID: rbac.RoleAdministrator, b.ID: rbac.RoleStaff},
		started: make(chan uuid.UUID, 2),
		release: map[uuid.UUID]chan struct{}{a.ID: make(chan struct{})},
	}
	store := &recordingSelectionStore{}
	m := NewManager(resolver, nil, store, nil)

	done := make(chan error, 1)
	go func() { done <- m.SelectTenant(context.Background(), user, a) }()
	<-resolver.started // A's lookup is in flight and blocked

	if err := m.SelectTenant(context.Background(), user, b); err != nil {
		t.Fatalf("SelectTenant(b): %v", err)
	}
	<-resolver.started

	// A's resolution completes after B won; the store must never see A.
	close(resolver.release[a.ID])
	if err := <-done; err != nil {
		t.Fatalf("superseded SelectTenant(a): %v", err)
	}

	saved := store.savedIDs()
	if len(saved) != 1 || saved[0] != b.ID {
		t.Fatalf("persisted selections = %v, want exactly [%v]", saved, b.ID)
	}
}

func TestLogoutNotUndoneByInFlightSelection(t *testing.T) {
	user := uuid.New()
	a := newTenant("Alpha")
	resolver := &mockResolver{
		roles:   map[uuid.UUID]rbac.Role{a.ID: rbac.RoleAdministrator},
		started: make(chan uuid.UUID, 1),
		release: map[uuid.UUID]chan struct{}{a.ID: make(chan struct{})},
	}
	store := &recordingSelectionStore{}
	m := NewManager(resolver, nil, store, nil)

	done := make(chan error, 1)
	go func() { done <- m.SelectTenant(context.Background(), user, a) }()
	<-resolver.started

	if err := m.Clear(context.Background(), user); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	close(resolver.release[a.ID])
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SelectTenant after Clear: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("SelectTenant did not return")
	}

	if store.deletes == 0 {
		t.Error("logout never deleted the persisted selection")
	}
	if saved := store.savedIDs(); len(saved) != 0 {
		t.Errorf("selection written to store after logout: %v", saved)
	}
}
