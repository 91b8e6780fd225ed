package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// selectionTTL bounds how long a persisted selection outlives activity.
// Matches the default JWT lifetime so a stale selection cannot outlast
// the token that made it.
const selectionTTL = 24 * time.Hour

// Store persists the selected tenant id per user in Redis so a session
// survives a server restart. Role and permissions are never persisted;
// they are re-resolved on rehydration.
type Store struct {
	client *redis.Client
}

// NewStore creates a Redis-backed selection store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func selectionKey(userID uuid.UUID) string {
	return fmt.Sprintf("session:%s:tenant", userID)
}

// SaveSelection records the selected tenant for the user.
func (s *Store) SaveSelection(ctx context.Context, userID, tenantID uuid.UUID) error {
	if err := s.client.Set(ctx, selectionKey(userID), tenantID.String(), selectionTTL).Err(); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

// LoadSelection returns the persisted tenant id, or false if none.
func (s *Store) LoadSelection(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	val, err := s.client.Get(ctx, selectionKey(userID)).Result()
	if err == redis.Nil {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("load selection: %w", err)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

// DeleteSelection removes the persisted selection.
func (s *Store) DeleteSelection(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, selectionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	return nil
}
