// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles cart business logic. It only ever reads stock; stock
// is mutated exclusively by the order service at checkout, so adding to
// a cart never reserves inventory.
type Service struct {
	db             *gorm.DB
	productService *product.Service
	config         *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, productService *product.Service, cfg *config.Config) *Service {
	return &Service{
		db:             db,
		productService: productService,
		config:         cfg,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID           uint   `json:"product_id" binding:"required"`
	Quantity            int    `json:"quantity" binding:"required,min=1"`
	SelectedSize        string `json:"selected_size"`
	SelectedColor       string `json:"selected_color"`
	SpecialInstructions string `json:"special_instructions"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetOrCreateCart returns the cart for a session, creating an empty one
// on first access.
func (s *Service) GetOrCreateCart(sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	var cart Cart
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.created_at ASC")
	}).Where("session_id = ?", sessionID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	cart = Cart{SessionID: sessionID}
	if err := s.db.Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

// GetCart returns the session's cart with product details, per-line
// subtotals at current effective prices, the cart subtotal and the
// total item count. Pure read.
func (s *Service) GetCart(sessionID string) (*CartView, error) {
	cart, err := s.GetOrCreateCart(sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildView(cart)
}

// AddToCart adds a product to the session's cart, merging into an
// existing line when the product is already present.
func (s *Service) AddToCart(sessionID string, req *AddToCartRequest) (*CartView, error) {
	cart, err := s.GetOrCreateCart(sessionID)
	if err != nil {
		return nil, err
	}

	prod, err := s.productService.GetProduct(req.ProductID)
	if err != nil {
		return nil, err
	}

	if !prod.IsAvailable {
		return nil, errs.NewUnavailableError(prod.Name)
	}

	if !prod.InStock(req.Quantity) {
		return nil, errs.NewInsufficientStockError(prod.Name, req.Quantity, prod.Stock)
	}

	var existing CartItem
	result := s.db.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&existing)

	switch {
	case result.Error == nil:
		// Merge: sum quantities, latest size/color/instructions win.
		newQuantity := existing.Quantity + req.Quantity
		if !prod.InStock(newQuantity) {
			return nil, errs.NewInsufficientStockError(prod.Name, newQuantity, prod.Stock)
		}

		existing.Quantity = newQuantity
		existing.SelectedSize = req.SelectedSize
		existing.SelectedColor = req.SelectedColor
		existing.SpecialInstructions = req.SpecialInstructions
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}

	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		item := CartItem{
			CartID:              cart.ID,
			ProductID:           req.ProductID,
			Quantity:            req.Quantity,
			SelectedSize:        req.SelectedSize,
			SelectedColor:       req.SelectedColor,
			SpecialInstructions: req.SpecialInstructions,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}

	default:
		return nil, fmt.Errorf("failed to look up cart item: %w", result.Error)
	}

	return s.GetCart(sessionID)
}

// UpdateCartItem changes a line's quantity. A quantity of zero or less
// removes the line.
func (s *Service) UpdateCartItem(sessionID string, itemID uint, req *UpdateCartItemRequest) (*CartView, error) {
	cart, item, err := s.findItem(sessionID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Quantity <= 0 {
		if err := s.db.Delete(item).Error; err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		return s.GetCart(cart.SessionID)
	}

	prod, err := s.productService.GetProduct(item.ProductID)
	if err != nil {
		return nil, err
	}
	if !prod.InStock(req.Quantity) {
		return nil, errs.NewInsufficientStockError(prod.Name, req.Quantity, prod.Stock)
	}

	item.Quantity = req.Quantity
	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(cart.SessionID)
}

// RemoveFromCart removes a line from the session's cart.
func (s *Service) RemoveFromCart(sessionID string, itemID uint) (*CartView, error) {
	cart, item, err := s.findItem(sessionID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Delete(item).Error; err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.GetCart(cart.SessionID)
}

// ClearCart removes all lines from the session's cart. The cart row
// itself persists for future use by the same session.
func (s *Service) ClearCart(sessionID string) error {
	cart, err := s.requireCart(sessionID)
	if err != nil {
		return err
	}
	return s.ClearCartTx(s.db, cart.ID)
}

// ClearCartTx deletes all items of a cart on the given transaction. The
// order service calls this inside the checkout transaction so a failed
// checkout leaves the cart untouched.
func (s *Service) ClearCartTx(tx *gorm.DB, cartID uint) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// RequireCart returns the cart for a session without creating one,
// failing with NotFoundError when the session has no cart yet.
func (s *Service) RequireCart(sessionID string) (*Cart, error) {
	return s.requireCart(sessionID)
}

// Private helper methods

func (s *Service) requireCart(sessionID string) (*Cart, error) {
	var cart Cart
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.created_at ASC")
	}).Where("session_id = ?", sessionID).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("cart", sessionID)
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &cart, nil
}

func (s *Service) findItem(sessionID string, itemID uint) (*Cart, *CartItem, error) {
	cart, err := s.requireCart(sessionID)
	if err != nil {
		return nil, nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return cart, &cart.Items[i], nil
		}
	}
	return nil, nil, errs.NewNotFoundError("cart item", itemID)
}

func (s *Service) buildView(cart *Cart) (*CartView, error) {
	view := &CartView{
		ID:        cart.ID,
		SessionID: cart.SessionID,
		Items:     make([]CartItemView, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}

	for _, item := range cart.Items {
		prod, err := s.productService.GetProduct(item.ProductID)
		if err != nil {
			// Product removed from the catalog after it was added;
			// skip the line rather than failing the whole view.
			if errors.Is(err, errs.ErrNotFound) {
				continue
			}
			return nil, err
		}

		subtotal := prod.EffectivePrice() * int64(item.Quantity)
		view.Items = append(view.Items, CartItemView{
			ID:                  item.ID,
			ProductID:           prod.ID,
			ProductName:         prod.Name,
			ProductImage:        prod.PrimaryImage(),
			Price:               prod.Price,
			DiscountPrice:       prod.DiscountPrice,
			Quantity:            item.Quantity,
			SelectedSize:        item.SelectedSize,
			SelectedColor:       item.SelectedColor,
			SpecialInstructions: item.SpecialInstructions,
			Subtotal:            subtotal,
			AvailableStock:      prod.Stock,
		})
		view.Subtotal += subtotal
		view.TotalItems += item.Quantity
	}

	return view, nil
}
