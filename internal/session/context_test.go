package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/internal/rbac"
)

// mockResolver maps tenant id to role, with optional per-tenant blocking
// so tests can control when a resolution completes.
type mockResolver struct {
	roles   map[uuid.UUID]rbac.Role
	err     error
	started chan uuid.UUID // receives tenant id when a lookup begins
	release map[uuid.UUID]chan struct{}
}

func (m *mockResolver) ResolveRole(ctx context.Context, userID, tenantID uuid.UUID) (rbac.Role, error) {
	if m.started != nil {
		m.started <- tenantID
	}
	if ch, ok := m.release[tenantID]; ok {
		<-ch
	}
	if m.err != nil {
		return rbac.RoleNone, m.err
	}
	return m.roles[tenantID], nil
}

func newTenant(name string) *models.Tenant {
	return &models.Tenant{ID: uuid.New(), Name: name}
}

func TestSelectTenantResolvesRole(t *testing.T) {
	user := uuid.New()
	tenant := newTenant("Acme Workshop")
	resolver := &mockResolver{roles: map[uuid.UUID]rbac.Role{tenant.ID: rbac.RoleStaff}}

	sc := NewContext(user)
	current, err := sc.SelectTenant(context.Background(), tenant, resolver)
	if err != nil {
		t.Fatalf("SelectTenant: %v", err)
	}
	if !current {
		t.Fatal("an uncontested selection should report current")
	}
	if got := sc.Role(); got != rbac.RoleStaff {
		t.Fatalf("Role() = %q, want staff", got)
	}
	perms := sc.Permissions()
	if !perms.CanEdit() {
		t.Error("staff should be able to edit")
	}
	if perms.CanDelete() {
		t.Error("staff must not be able to delete")
	}
	if got := sc.SelectedTenant(); got == nil || got.ID != tenant.ID {
		t.Error("selected tenant not reflected")
	}
}

func TestSelectTenantResolutionFailure(t *testing.T) {
	user := uuid.New()
	a := newTenant("Alpha")
	b := newTenant("Beta")
	resolver := &mockResolver{roles: map[uuid.UUID]rbac.Role{a.ID: rbac.RoleAdministrator}}

	sc := NewContext(user)
	if _, err := sc.SelectTenant(context.Background(), a, resolver); err != nil {
		t.Fatalf("SelectTenant(a): %v", err)
	}

	resolver.err = errors.New("store unreachable")
	_, err := sc.SelectTenant(context.Background(), b, resolver)
	if !errors.Is(err, ErrRoleResolutionFailed) {
		t.Fatalf("expected ErrRoleResolutionFailed, got %v", err)
	}
	// Tenant A's role must not survive the switch.
	if got := sc.Role(); got != rbac.RoleNone {
		t.Fatalf("Role() after failed resolution = %q, want none", got)
	}
	if sc.Permissions().CanView() {
		t.Error("permissions not cleared after failed resolution")
	}
	if got := sc.SelectedTenant(); got == nil || got.ID != b.ID {
		t.Error("selection should stay on the new tenant")
	}
}

func TestRapidSwitchLastSelectionWins(t *testing.T) {
	user := uuid.New()
	a := newTenant("Alpha")
	b := newTenant("Beta")
	resolver := &mockResolver{
		roles:   map[uuid.UUID]rbac.Role{a.ID: rbac.RoleAdministrator, b.ID: rbac.RoleStaff},
		started: make(chan uuid.UUID, 2),
		release: map[uuid.UUID]chan struct{}{a.ID: make(chan struct{})},
	}

	sc := NewContext(user)

	type outcome struct {
		current bool
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		current, err := sc.SelectTenant(context.Background(), a, resolver)
		done <- outcome{current, err}
	}()
	<-resolver.started // A's lookup is now in flight and blocked

	// Switch to B while A is still resolving. B resolves immediately.
	if _, err := sc.SelectTenant(context.Background(), b, resolver); err != nil {
		t.Fatalf("SelectTenant(b): %v", err)
	}
	<-resolver.started
	if got := sc.Role(); got != rbac.RoleStaff {
		t.Fatalf("Role() after selecting B = %q, want staff", got)
	}

	// Let A's stale resolution complete; it must be discarded.
	close(resolver.release[a.ID])
	out := <-done
	if out.err != nil {
		t.Fatalf("stale SelectTenant(a) returned error: %v", out.err)
	}
	if out.current {
		t.Fatal("superseded selection reported itself current")
	}
	if got := sc.Role(); got != rbac.RoleStaff {
		t.Fatalf("stale resolution overwrote role: got %q, want staff", got)
	}
	if got := sc.SelectedTenant(); got == nil || got.ID != b.ID {
		t.Error("selected tenant should remain B")
	}
	if sc.Permissions().CanDelete() {
		t.Error("administrator permissions from A leaked into B's session")
	}
}

func TestClearDiscardsInFlightResolution(t *testing.T) {
	user := uuid.New()
	a := newTenant("Alpha")
	resolver := &mockResolver{
		roles:   map[uuid.UUID]rbac.Role{a.ID: rbac.RoleAdministrator},
		started: make(chan uuid.UUID, 1),
		release: map[uuid.UUID]chan struct{}{a.ID: make(chan struct{})},
	}

	sc := NewContext(user)
	done := make(chan bool, 1)
	go func() {
		current, _ := sc.SelectTenant(context.Background(), a, resolver)
		done <- current
	}()
	<-resolver.started

	sc.Clear()
	close(resolver.release[a.ID])
	select {
	case current := <-done:
		if current {
			t.Fatal("selection cleared mid-flight reported itself current")
		}
	case <-time.After(time.Second):
		t.Fatal("SelectTenant did not return")
	}

	if sc.SelectedTenant() != nil {
		t.Error("tenant survived Clear")
	}
	if got := sc.Role(); got != rbac.RoleNone {
		t.Errorf("role survived Clear: %q", got)
	}
	if sc.Permissions().CanView() {
		t.Error("permissions survived Clear")
	}
}

func TestSelectSameTenantIsIdempotent(t *testing.T) {
	user := uuid.New()
	tenant := newTenant("Acme Workshop")
	resolver := &mockResolver{roles: map[uuid.UUID]rbac.Role{tenant.ID: rbac.RoleManager}}

	sc := NewContext(user)
	for i := 0; i < 2; i++ {
		if _, err := sc.SelectTenant(context.Background(), tenant, resolver); err != nil {
			t.Fatalf("SelectTenant #%d: %v", i+1, err)
		}
	}
	if got := sc.Role(); got != rbac.RoleManager {
		t.Fatalf("Role() = %q, want manager", got)
	}
}
