// internal/domain/product/entity.go
package product

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Product represents the product entity. Prices are in paisa.
type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null;size:255" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         int64          `gorm:"not null" json:"price"`
	DiscountPrice *int64         `json:"discount_price,omitempty"`
	Stock         int            `gorm:"not null;default:0" json:"stock"`
	CategoryID    uint           `gorm:"not null;index" json:"category_id"`
	Images        string         `gorm:"type:text" json:"-"`
	Size          string         `gorm:"size:50" json:"size,omitempty"`
	Color         string         `gorm:"size:50" json:"color,omitempty"`
	Brand         string         `gorm:"size:100" json:"brand,omitempty"`
	Gender        string         `gorm:"size:20" json:"gender,omitempty"`
	Material      string         `gorm:"size:100" json:"material,omitempty"`
	Occasion      string         `gorm:"size:100" json:"occasion,omitempty"`
	Tags          string         `gorm:"size:500" json:"tags,omitempty"` // Comma-separated tags
	IsAvailable   bool           `gorm:"default:true" json:"is_available"`
	IsFeatured    bool           `gorm:"default:false" json:"is_featured"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
}

// Category represents product categories
type Category struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null;size:255" json:"name"`
	Slug         string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description  string         `gorm:"size:500" json:"description"`
	Image        string         `gorm:"size:500" json:"image"`
	DisplayOrder int            `gorm:"default:0" json:"display_order"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

// Business methods for Product

// EffectivePrice returns the price a buyer actually pays: the discount
// price when one is set, otherwise the list price.
func (p *Product) EffectivePrice() int64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// ImageList returns the product images as a slice.
func (p *Product) ImageList() []string {
	if p.Images == "" {
		return nil
	}
	parts := strings.Split(p.Images, ",")
	images := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			images = append(images, trimmed)
		}
	}
	return images
}

// PrimaryImage returns the first product image, or "" if there is none.
func (p *Product) PrimaryImage() string {
	if images := p.ImageList(); len(images) > 0 {
		return images[0]
	}
	return ""
}

// InStock checks whether the requested quantity can currently be fulfilled.
func (p *Product) InStock(quantity int) bool {
	return p.Stock >= quantity
}
