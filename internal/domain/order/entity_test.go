package order_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

func TestParseOrderStatus(t *testing.T) {
	valid := []string{
		"PENDING", "CONFIRMED", "PREPARING", "READY",
		"OUT_FOR_DELIVERY", "DELIVERED", "CANCELLED",
	}
	for _, value := range valid {
		status, err := order.ParseOrderStatus(value)
		require.NoError(t, err, value)
		assert.Equal(t, order.OrderStatus(value), status)
	}

	for _, value := range []string{"", "pending", "SHIPPED", "Delivered"} {
		_, err := order.ParseOrderStatus(value)
		require.Error(t, err, value)
		assert.True(t, errors.Is(err, errs.ErrInvalidStatus))
	}
}

func TestParsePaymentStatus(t *testing.T) {
	valid := []string{"PENDING", "COMPLETED", "FAILED", "REFUNDED"}
	for _, value := range valid {
		status, err := order.ParsePaymentStatus(value)
		require.NoError(t, err, value)
		assert.Equal(t, order.PaymentStatus(value), status)
	}

	_, err := order.ParsePaymentStatus("PAID")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidStatus))
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.True(t, order.OrderStatusDelivered.IsTerminal())
	assert.True(t, order.OrderStatusCancelled.IsTerminal())

	for _, status := range []order.OrderStatus{
		order.OrderStatusPending, order.OrderStatusConfirmed,
		order.OrderStatusPreparing, order.OrderStatusReady,
		order.OrderStatusOutForDelivery,
	} {
		assert.False(t, status.IsTerminal(), string(status))
	}
}

func TestTrackingTransitionFor(t *testing.T) {
	tests := []struct {
		status          order.OrderStatus
		expectedStatus  order.DeliveryStatus
		expectedMessage string
	}{
		{order.OrderStatusConfirmed, order.DeliveryStatusConfirmed, "Your order has been confirmed"},
		{order.OrderStatusPreparing, order.DeliveryStatusPreparing, "Your order is being prepared"},
		{order.OrderStatusReady, order.DeliveryStatusReady, "Your order is ready for pickup"},
		{order.OrderStatusOutForDelivery, order.DeliveryStatusOutForDelivery, "Your order is out for delivery"},
		{order.OrderStatusDelivered, order.DeliveryStatusDelivered, "Your order has been delivered"},
		{order.OrderStatusCancelled, order.DeliveryStatusCancelled, "Your order has been cancelled"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			transition, ok := order.TrackingTransitionFor(tt.status)
			require.True(t, ok)
			assert.Equal(t, tt.expectedStatus, transition.Status)
			assert.Equal(t, tt.expectedMessage, transition.Message)
		})
	}
}

func TestTrackingTransitionFor_PendingHasNoTransition(t *testing.T) {
	_, ok := order.TrackingTransitionFor(order.OrderStatusPending)
	assert.False(t, ok)
}

func TestDeliveryStatusDisplayName(t *testing.T) {
	assert.Equal(t, "Order Placed", order.DeliveryStatusOrderPlaced.DisplayName())
	assert.Equal(t, "Out for delivery", order.DeliveryStatusOutForDelivery.DisplayName())

	// Unknown values fall back to the raw string
	assert.Equal(t, "SOMETHING", order.DeliveryStatus("SOMETHING").DisplayName())
}

func TestOrderGetFormattedTotal(t *testing.T) {
	o := order.Order{TotalAmount: 150000}
	assert.Equal(t, 1500.0, o.GetFormattedTotal())
}
