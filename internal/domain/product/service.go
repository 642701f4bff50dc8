// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles catalog business logic. The cart and order services
// consume it as a read-only view of products; stock mutation happens
// only through DecrementStock/RestoreStock inside an order transaction.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Category  string `form:"category"`
	Search    string `form:"search"`
	Featured  bool   `form:"featured"`
	Available bool   `form:"available"`
}

// ProductListResponse represents a paginated product listing
type ProductListResponse struct {
	Products   []Product `json:"products"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// CreateProductRequest represents admin product creation data
type CreateProductRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Price         int64  `json:"price" binding:"required,min=1"`
	DiscountPrice *int64 `json:"discount_price"`
	Stock         int    `json:"stock" binding:"min=0"`
	CategoryID    uint   `json:"category_id" binding:"required"`
	Images        string `json:"images"`
	Size          string `json:"size"`
	Color         string `json:"color"`
	Brand         string `json:"brand"`
	Gender        string `json:"gender"`
	Material      string `json:"material"`
	Occasion      string `json:"occasion"`
	Tags          string `json:"tags"`
	IsAvailable   *bool  `json:"is_available"`
	IsFeatured    bool   `json:"is_featured"`
}

// GetProduct retrieves a single product with its category
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	result := s.db.Preload("Category").Where("id = ?", id).First(&prod)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &prod, nil
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Product{}).Preload("Category")

	if req.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", req.Category)
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("products.name ILIKE ? OR products.description ILIKE ?", like, like)
	}
	if req.Featured {
		query = query.Where("products.is_featured = ?", true)
	}
	if req.Available {
		query = query.Where("products.is_available = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("products.created_at DESC").
		Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ProductListResponse{
		Products:   products,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetCategories retrieves all active categories ordered for display
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Where("is_active = ?", true).
		Order("display_order ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateProduct creates a new product (admin)
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	var category Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("category", req.CategoryID)
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", err)
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	prod := Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		CategoryID:    req.CategoryID,
		Images:        req.Images,
		Size:          req.Size,
		Color:         req.Color,
		Brand:         req.Brand,
		Gender:        req.Gender,
		Material:      req.Material,
		Occasion:      req.Occasion,
		Tags:          req.Tags,
		IsAvailable:   available,
		IsFeatured:    req.IsFeatured,
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	prod.Category = category
	return &prod, nil
}

// UpdateProduct updates an existing product (admin)
func (s *Service) UpdateProduct(id uint, req *CreateProductRequest) (*Product, error) {
	prod, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":           req.Name,
		"description":    req.Description,
		"price":          req.Price,
		"discount_price": req.DiscountPrice,
		"stock":          req.Stock,
		"category_id":    req.CategoryID,
		"images":         req.Images,
		"size":           req.Size,
		"color":          req.Color,
		"brand":          req.Brand,
		"gender":         req.Gender,
		"material":       req.Material,
		"occasion":       req.Occasion,
		"tags":           req.Tags,
		"is_featured":    req.IsFeatured,
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}

	if err := s.db.Model(prod).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetProduct(id)
}

// DeleteProduct soft-deletes a product (admin)
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError("product", id)
	}
	return nil
}

// DecrementStock atomically takes quantity units out of stock, failing
// when fewer than quantity units remain. The single conditional UPDATE
// is what keeps concurrent checkouts from driving stock negative; it
// must run on the caller's transaction so a later failure rolls the
// decrement back. Returns the remaining stock.
func (s *Service) DecrementStock(tx *gorm.DB, productID uint, quantity int) (int, error) {
	result := tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to decrement stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the product vanished or the guard failed. Re-read to
		// tell the two apart and report the quantity actually left.
		var prod Product
		if err := tx.Where("id = ?", productID).First(&prod).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, errs.NewNotFoundError("product", productID)
			}
			return 0, fmt.Errorf("failed to re-read product stock: %w", err)
		}
		return 0, errs.NewInsufficientStockError(prod.Name, quantity, prod.Stock)
	}

	var remaining int
	if err := tx.Model(&Product{}).Where("id = ?", productID).
		Select("stock").Scan(&remaining).Error; err != nil {
		return 0, fmt.Errorf("failed to read remaining stock: %w", err)
	}
	return remaining, nil
}

// RestoreStock puts quantity units back into stock, e.g. after an admin
// correction. Runs on the caller's transaction.
func (s *Service) RestoreStock(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to restore stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError("product", productID)
	}
	return nil
}
