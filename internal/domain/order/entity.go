// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusReady          OrderStatus = "READY"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// ParseOrderStatus validates a status value coming from a caller.
func ParseOrderStatus(value string) (OrderStatus, error) {
	switch OrderStatus(value) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCancelled:
		return OrderStatus(value), nil
	}
	return "", errs.NewInvalidStatusError(value)
}

// IsTerminal reports whether no further fulfillment transitions are
// expected from this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// ParsePaymentStatus validates a payment status value coming from a caller.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	switch PaymentStatus(value) {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return PaymentStatus(value), nil
	}
	return "", errs.NewInvalidStatusError(value)
}

// DeliveryStatus represents the customer-facing tracking status
type DeliveryStatus string

const (
	DeliveryStatusOrderPlaced    DeliveryStatus = "ORDER_PLACED"
	DeliveryStatusConfirmed      DeliveryStatus = "CONFIRMED"
	DeliveryStatusPreparing      DeliveryStatus = "PREPARING"
	DeliveryStatusReady          DeliveryStatus = "READY"
	DeliveryStatusOutForDelivery DeliveryStatus = "OUT_FOR_DELIVERY"
	DeliveryStatusDelivered      DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled      DeliveryStatus = "CANCELLED"
)

var deliveryStatusDisplayNames = map[DeliveryStatus]string{
	DeliveryStatusOrderPlaced:    "Order Placed",
	DeliveryStatusConfirmed:      "Order Confirmed",
	DeliveryStatusPreparing:      "Preparing your order",
	DeliveryStatusReady:          "Ready for pickup",
	DeliveryStatusOutForDelivery: "Out for delivery",
	DeliveryStatusDelivered:      "Delivered",
	DeliveryStatusCancelled:      "Cancelled",
}

// DisplayName returns the customer-facing label for a delivery status.
func (s DeliveryStatus) DisplayName() string {
	if name, ok := deliveryStatusDisplayNames[s]; ok {
		return name
	}
	return string(s)
}

// TrackingTransition is the tracking-side effect of an order status
// change: the delivery status and customer message to record.
type TrackingTransition struct {
	Status  DeliveryStatus
	Message string
}

// trackingTransitions maps order statuses to their tracking equivalent.
// PENDING deliberately has no entry: a pending order leaves its
// tracking record untouched.
var trackingTransitions = map[OrderStatus]TrackingTransition{
	OrderStatusConfirmed:      {DeliveryStatusConfirmed, "Your order has been confirmed"},
	OrderStatusPreparing:      {DeliveryStatusPreparing, "Your order is being prepared"},
	OrderStatusReady:          {DeliveryStatusReady, "Your order is ready for pickup"},
	OrderStatusOutForDelivery: {DeliveryStatusOutForDelivery, "Your order is out for delivery"},
	OrderStatusDelivered:      {DeliveryStatusDelivered, "Your order has been delivered"},
	OrderStatusCancelled:      {DeliveryStatusCancelled, "Your order has been cancelled"},
}

// TrackingTransitionFor returns the tracking update triggered by an
// order status change, if any.
func TrackingTransitionFor(status OrderStatus) (TrackingTransition, bool) {
	t, ok := trackingTransitions[status]
	return t, ok
}

// Order represents the order entity: an immutable snapshot of a cart at
// checkout time. Only the status fields change after creation; line
// items and captured prices never do, which keeps the order an
// audit-safe record independent of later catalog edits. Amounts are in
// paisa.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`

	// Customer contact and delivery fields
	CustomerName    string `gorm:"not null;size:255" json:"customer_name"`
	CustomerEmail   string `gorm:"size:255" json:"customer_email,omitempty"`
	CustomerPhone   string `gorm:"not null;size:50" json:"customer_phone"`
	DeliveryAddress string `gorm:"not null;type:text" json:"delivery_address"`
	DeliveryCity    string `gorm:"size:100" json:"delivery_city,omitempty"`
	DeliveryNotes   string `gorm:"type:text" json:"delivery_notes,omitempty"`

	// Money fields
	Subtotal       int64 `gorm:"not null" json:"subtotal"`
	DeliveryCharge int64 `gorm:"default:0" json:"delivery_charge"`
	Discount       int64 `gorm:"default:0" json:"discount"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	// Status fields
	PaymentStatus PaymentStatus `gorm:"not null;default:'PENDING';size:20" json:"payment_status"`
	PaymentMethod string        `gorm:"size:50" json:"payment_method,omitempty"`
	TransactionID string        `gorm:"size:100" json:"transaction_id,omitempty"`
	OrderStatus   OrderStatus   `gorm:"not null;default:'PENDING';size:20" json:"order_status"`
	OrderType     string        `gorm:"size:50" json:"order_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items    []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Tracking *DeliveryTracking `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tracking,omitempty"`
}

// OrderItem represents one frozen line of an order. Name, image and
// unit price are captured from the catalog at checkout time.
type OrderItem struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	OrderID             uint      `gorm:"not null;index" json:"order_id"`
	ProductID           uint      `gorm:"not null;index" json:"product_id"`
	ProductName         string    `gorm:"not null;size:255" json:"product_name"`
	ProductImage        string    `gorm:"size:500" json:"product_image,omitempty"`
	Price               int64     `gorm:"not null" json:"price"` // Unit price at order time
	Quantity            int       `gorm:"not null" json:"quantity"`
	SelectedSize        string    `gorm:"size:50" json:"selected_size,omitempty"`
	SelectedColor       string    `gorm:"size:50" json:"selected_color,omitempty"`
	SpecialInstructions string    `gorm:"type:text" json:"special_instructions,omitempty"`
	Subtotal            int64     `gorm:"not null" json:"subtotal"` // Price * Quantity
	CreatedAt           time.Time `json:"created_at"`
}

// DeliveryTracking mirrors a subset of order status changes with
// customer-facing delivery messaging. One record per tracked order,
// created only at order-creation time and mutated only by the order
// state machine.
type DeliveryTracking struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	OrderID               uint           `gorm:"uniqueIndex;not null" json:"order_id"`
	Status                DeliveryStatus `gorm:"not null;default:'ORDER_PLACED';size:20" json:"status"`
	StatusMessage         string         `gorm:"size:255" json:"status_message"`
	CourierName           string         `gorm:"size:100" json:"courier_name,omitempty"`
	CourierPhone          string         `gorm:"size:50" json:"courier_phone,omitempty"`
	EstimatedDeliveryTime *time.Time     `json:"estimated_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time     `json:"actual_delivery_time,omitempty"`
	LastUpdated           time.Time      `json:"last_updated"`
	CreatedAt             time.Time      `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string            { return "orders" }
func (OrderItem) TableName() string        { return "order_items" }
func (DeliveryTracking) TableName() string { return "delivery_tracking" }

// GetFormattedTotal returns total amount in rupees as a float
func (o *Order) GetFormattedTotal() float64 {
	return float64(o.TotalAmount) / 100
}
