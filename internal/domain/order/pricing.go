// internal/domain/order/pricing.go
package order

// DeliveryChargeFor returns the delivery charge for an order subtotal:
// free once the subtotal reaches freeThreshold, otherwise flatCharge.
// All amounts in paisa.
func DeliveryChargeFor(subtotal, freeThreshold, flatCharge int64) int64 {
	if subtotal >= freeThreshold {
		return 0
	}
	return flatCharge
}
