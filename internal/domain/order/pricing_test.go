package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/storefront-backend/internal/domain/order"
)

func TestDeliveryChargeFor(t *testing.T) {
	const (
		freeThreshold = int64(100000) // Rs 1000.00
		flatCharge    = int64(10000)  // Rs 100.00
	)

	tests := []struct {
		name     string
		subtotal int64
		expected int64
	}{
		{"zero subtotal", 0, flatCharge},
		{"small order", 50000, flatCharge},
		{"one paisa below threshold", 99999, flatCharge},
		{"exactly at threshold", 100000, 0},
		{"above threshold", 150000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charge := order.DeliveryChargeFor(tt.subtotal, freeThreshold, flatCharge)
			assert.Equal(t, tt.expected, charge)
		})
	}
}
