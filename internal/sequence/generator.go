// Package sequence mints per-tenant order numbers. Uniqueness under
// concurrent creation is guaranteed by the store: the increment is a
// single atomic statement, never an application-side read-then-write.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/google/uuid"

	"github.com/tallerhub/backend/internal/models"
)

// ErrSequenceUnavailable wraps store failures. Order creation must abort
// when minting fails; an order never exists without a minted number.
var ErrSequenceUnavailable = errors.New("sequence unavailable")

// Store advances the per-tenant counter. Next creates the row at 1 on
// first use and returns the post-increment row afterwards, atomically.
type Store interface {
	Next(ctx context.Context, tenantID uuid.UUID) (*models.Sequence, error)
}

// Generator mints order numbers like "ACM-0007".
type Generator struct {
	store Store
}

// NewGenerator creates a generator over the given store.
func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// NextOrderNumber returns the next number for the tenant, formatted as
// {prefix}-{sequential:04d}. Past 9999 the numeric part simply widens
// ("ACM-10000"); there is no wraparound.
func (g *Generator) NextOrderNumber(ctx context.Context, tenant *models.Tenant) (string, error) {
	seq, err := g.store.Next(ctx, tenant.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSequenceUnavailable, err)
	}
	return fmt.Sprintf("%s-%04d", Prefix(tenant.Name), seq.Sequential), nil
}

// Prefix derives the order-number prefix from a tenant name: letters
// only, uppercased, first three, right-padded with "X" when the name has
// fewer than three letters ("Bo's" -> "BOS", "3M" -> "MXX", "" -> "XXX").
func Prefix(name string) string {
	letters := make([]rune, 0, 3)
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				break
			}
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}
