package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/models"
)

// memStore mimics the database's atomic upsert-increment in memory.
type memStore struct {
	mu       sync.Mutex
	counters map[uuid.UUID]int64
	err      error
}

func newMemStore() *memStore {
	return &memStore{counters: make(map[uuid.UUID]int64)}
}

func (s *memStore) Next(ctx context.Context, tenantID uuid.UUID) (*models.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.counters[tenantID]++
	return &models.Sequence{TenantID: tenantID, Sequential: s.counters[tenantID]}, nil
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Acme Workshop", "ACM"},
		{"acme", "ACM"},
		{"Bo's", "BOS"},
		{"3M", "MXX"},
		{"42", "XXX"},
		{"", "XXX"},
		{"  el taller  ", "ELT"},
	}
	for _, tt := range tests {
		if got := Prefix(tt.name); got != tt.want {
			t.Errorf("Prefix(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNextOrderNumberFirstAndSecond(t *testing.T) {
	store := newMemStore()
	gen := NewGenerator(store)
	tenant := &models.Tenant{ID: uuid.New(), Name: "Acme Workshop"}

	first, err := gen.NextOrderNumber(context.Background(), tenant)
	if err != nil {
		t.Fatalf("first mint: %v", err)
	}
	if first != "ACM-0001" {
		t.Fatalf("first = %q, want ACM-0001", first)
	}
	second, err := gen.NextOrderNumber(context.Background(), tenant)
	if err != nil {
		t.Fatalf("second mint: %v", err)
	}
	if second != "ACM-0002" {
		t.Fatalf("second = %q, want ACM-0002", second)
	}
}

func TestNextOrderNumberWidensPast9999(t *testing.T) {
	store := newMemStore()
	tenant := &models.Tenant{ID: uuid.New(), Name: "Acme Workshop"}
	store.counters[tenant.ID] = 9999

	got, err := NewGenerator(store).NextOrderNumber(context.Background(), tenant)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if got != "ACM-10000" {
		t.Fatalf("got %q, want ACM-10000", got)
	}
}

func TestNextOrderNumberConcurrent(t *testing.T) {
	const n = 50
	store := newMemStore()
	tenant := &models.Tenant{ID: uuid.New(), Name: "Acme Workshop"}
	store.counters[tenant.ID] = 5
	gen := NewGenerator(store)

	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := gen.NextOrderNumber(context.Background(), tenant)
			if err != nil {
				t.Errorf("mint: %v", err)
				return
			}
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for num := range results {
		if seen[num] {
			t.Fatalf("duplicate order number %q", num)
		}
		seen[num] = true
	}
	// Exactly {6 .. 5+n}, no gaps.
	for i := 6; i <= 5+n; i++ {
		want := fmt.Sprintf("ACM-%04d", i)
		if !seen[want] {
			t.Errorf("missing order number %q", want)
		}
	}
}

func TestNextOrderNumberStoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	tenant := &models.Tenant{ID: uuid.New(), Name: "Acme Workshop"}

	_, err := NewGenerator(store).NextOrderNumber(context.Background(), tenant)
	if !errors.Is(err, ErrSequenceUnavailable) {
		t.Fatalf("expected ErrSequenceUnavailable, got %v", err)
	}
}
