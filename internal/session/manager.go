package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/models"
)

// TenantGetter loads a tenant by id, used when rehydrating a persisted
// selection after a restart.
type TenantGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// SelectionStore persists which tenant a user has selected.
type SelectionStore interface {
	SaveSelection(ctx context.Context, userID, tenantID uuid.UUID) error
	LoadSelection(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error)
	DeleteSelection(ctx context.Context, userID uuid.UUID) error
}

// Manager owns all session contexts, one per user. Handlers reach tenant
// selection state only through here.
type Manager struct {
	resolver Resolver
	tenants  TenantGetter
	store    SelectionStore // optional; nil disables persistence
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Context
}

// NewManager creates a session manager.
func NewManager(resolver Resolver, tenants TenantGetter, store SelectionStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		resolver: resolver,
		tenants:  tenants,
		store:    store,
		logger:   logger,
		sessions: make(map[uuid.UUID]*Context),
	}
}

// Get returns the user's session context, creating it if needed. A fresh
// context is rehydrated from the persisted selection when one exists;
// rehydration failures leave the session unselected rather than failing
// the request.
func (m *Manager) Get(ctx context.Context, userID uuid.UUID) *Context {
	m.mu.Lock()
	sc, ok := m.sessions[userID]
	if !ok {
		sc = NewContext(userID)
		m.sessions[userID] = sc
	}
	m.mu.Unlock()
	if !ok {
		m.rehydrate(ctx, sc)
	}
	return sc
}

func (m *Manager) rehydrate(ctx context.Context, sc *Context) {
	if m.store == nil || m.tenants == nil {
		return
	}
	tenantID, found, err := m.store.LoadSelection(ctx, sc.UserID())
	if err != nil {
		m.logger.Warn("load persisted selection", zap.Error(err), zap.String("user_id", sc.UserID().String()))
		return
	}
	if !found {
		return
	}
	tenant, err := m.tenants.GetByID(ctx, tenantID)
	if err != nil {
		m.logger.Warn("rehydrate tenant", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return
	}
	if _, err := sc.SelectTenant(ctx, tenant, m.resolver); err != nil {
		m.logger.Warn("rehydrate role", zap.Error(err), zap.String("tenant_id", tenantID.String()))
	}
}

// SelectTenant makes the tenant active for the user and persists the
// selection. The role resolution outcome follows Context.SelectTenant.
// A selection that was superseded (or wiped by a logout) while its role
// was still resolving is never persisted: only the winning selection may
// reach the store, or a restart would rehydrate the loser.
func (m *Manager) SelectTenant(ctx context.Context, userID uuid.UUID, tenant *models.Tenant) error {
	sc := m.Get(ctx, userID)
	current, err := sc.SelectTenant(ctx, tenant, m.resolver)
	if err != nil {
		return err
	}
	if !current {
		return nil
	}
	if m.store != nil {
		if err := m.store.SaveSelection(ctx, userID, tenant.ID); err != nil {
			m.logger.Warn("persist selection", zap.Error(err), zap.String("user_id", userID.String()))
		}
	}
	return nil
}

// Clear wipes the user's session on logout: in-memory state and the
// persisted selection. No stale permission is observable afterwards.
func (m *Manager) Clear(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	sc, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()
	if ok {
		sc.Clear()
	}
	if m.store != nil {
		return m.store.DeleteSelection(ctx, userID)
	}
	return nil
}
