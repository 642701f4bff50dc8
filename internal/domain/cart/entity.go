// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Cart represents a session-scoped shopping cart. The cart row is
// created lazily on first access and survives checkout; only its items
// are cleared when an order is placed.
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"uniqueIndex;not null;size:100" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// CartItem represents one line in a cart. At most one line exists per
// product; adding the same product again merges into the existing line.
type CartItem struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	CartID              uint      `gorm:"not null;index" json:"cart_id"`
	ProductID           uint      `gorm:"not null;index" json:"product_id"`
	Quantity            int       `gorm:"not null;default:1" json:"quantity"`
	SelectedSize        string    `gorm:"size:50" json:"selected_size,omitempty"`
	SelectedColor       string    `gorm:"size:50" json:"selected_color,omitempty"`
	SpecialInstructions string    `gorm:"type:text" json:"special_instructions,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// CartItemView represents a cart line with product details and the
// computed line subtotal at current effective prices.
type CartItemView struct {
	ID                  uint   `json:"id"`
	ProductID           uint   `json:"product_id"`
	ProductName         string `json:"product_name"`
	ProductImage        string `json:"product_image,omitempty"`
	Price               int64  `json:"price"`
	DiscountPrice       *int64 `json:"discount_price,omitempty"`
	Quantity            int    `json:"quantity"`
	SelectedSize        string `json:"selected_size,omitempty"`
	SelectedColor       string `json:"selected_color,omitempty"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
	Subtotal            int64  `json:"subtotal"`
	AvailableStock      int    `json:"available_stock"`
}

// CartView represents a cart with computed totals. Prices are live
// catalog prices; nothing is frozen until checkout.
type CartView struct {
	ID         uint           `json:"id"`
	SessionID  string         `json:"session_id"`
	Items      []CartItemView `json:"items"`
	Subtotal   int64          `json:"subtotal"`
	TotalItems int            `json:"total_items"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
