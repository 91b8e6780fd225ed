package workorders

import (
	"testing"

	"github.com/tallerhub/backend/internal/models"
)

func TestValidTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.OrderStatusPending, models.OrderStatusInProgress},
		{models.OrderStatusInProgress, models.OrderStatusCompleted},
		{models.OrderStatusCompleted, models.OrderStatusDelivered},
		{models.OrderStatusPending, models.OrderStatusPending},
	}
	for _, tt := range allowed {
		if !ValidTransition(tt.from, tt.to) {
			t.Errorf("ValidTransition(%q, %q) = false, want true", tt.from, tt.to)
		}
	}
	denied := []struct{ from, to string }{
		{models.OrderStatusPending, models.OrderStatusCompleted},
		{models.OrderStatusDelivered, models.OrderStatusPending},
		{models.OrderStatusCompleted, models.OrderStatusInProgress},
		{models.OrderStatusDelivered, models.OrderStatusCompleted},
		{"unknown", models.OrderStatusPending},
	}
	for _, tt := range denied {
		if ValidTransition(tt.from, tt.to) {
			t.Errorf("ValidTransition(%q, %q) = true, want false", tt.from, tt.to)
		}
	}
}
