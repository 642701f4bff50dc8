// internal/domain/order/service.go
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles order business logic: converting carts into orders
// and driving orders through their fulfillment lifecycle.
type Service struct {
	db             *gorm.DB
	redisClient    *redis.Client
	config         *config.Config
	cartService    *cart.Service
	productService *product.Service
	logger         *logrus.Logger
	now            Clock
	numbers        NumberGenerator
}

// Option customizes a Service, mainly so tests can pin the clock and
// the order number sequence.
type Option func(*Service)

// WithClock overrides the service clock.
func WithClock(clock Clock) Option {
	return func(s *Service) { s.now = clock }
}

// WithNumberGenerator overrides the order number generator.
func WithNumberGenerator(gen NumberGenerator) Option {
	return func(s *Service) { s.numbers = gen }
}

// NewService creates a new order service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config,
	cartService *cart.Service, productService *product.Service,
	logger *logrus.Logger, opts ...Option) *Service {

	s := &Service{
		db:             db,
		redisClient:    redisClient,
		config:         cfg,
		cartService:    cartService,
		productService: productService,
		logger:         logger,
		now:            time.Now,
		numbers:        NewTimeNumberGenerator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrderRequest represents order creation data
type CreateOrderRequest struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone" binding:"required"`
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	DeliveryCity    string `json:"delivery_city"`
	DeliveryNotes   string `json:"delivery_notes"`
	PaymentMethod   string `json:"payment_method"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Status string `form:"status"`
}

// OrderListResponse represents orders with pagination
type OrderListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// PaymentUpdateRequest represents a payment status update delivered by
// an external actor (gateway callback or admin tooling).
type PaymentUpdateRequest struct {
	Status        string `json:"status" binding:"required"`
	TransactionID string `json:"transaction_id"`
}

// AssignCourierRequest represents courier assignment data
type AssignCourierRequest struct {
	CourierName           string     `json:"courier_name" binding:"required"`
	CourierPhone          string     `json:"courier_phone"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time"`
}

// TrackingView is the customer-facing tracking record for an order.
type TrackingView struct {
	ID                    uint       `json:"id"`
	OrderNumber           string     `json:"order_number"`
	Status                string     `json:"status"`
	StatusDisplayName     string     `json:"status_display_name"`
	StatusMessage         string     `json:"status_message"`
	CourierName           string     `json:"courier_name,omitempty"`
	CourierPhone          string     `json:"courier_phone,omitempty"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time `json:"actual_delivery_time,omitempty"`
	LastUpdated           time.Time  `json:"last_updated"`
}

// PlaceOrder converts the session's cart into an order as one atomic
// unit: stock validation, price capture, order and item rows, stock
// decrements, the tracking record and the cart clear all commit or roll
// back together. A failure at any step leaves stock, cart and orders
// exactly as they were.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, req *CreateOrderRequest) (*Order, error) {
	userCart, err := s.cartService.RequireCart(sessionID)
	if err != nil {
		return nil, err
	}

	if len(userCart.Items) == 0 {
		return nil, errs.NewEmptyCartError(sessionID)
	}

	now := s.now().UTC()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin order transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	// Re-read every product inside the transaction: validate stock,
	// capture the effective unit price, and derive the order type from
	// the first line's category. Multi-category carts take the first
	// line's category as the whole order's type.
	var subtotal int64
	var orderType string
	items := make([]OrderItem, 0, len(userCart.Items))

	for _, line := range userCart.Items {
		var prod product.Product
		if err := tx.Preload("Category").Where("id = ?", line.ProductID).First(&prod).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errs.NewNotFoundError("product", line.ProductID)
			}
			return nil, fmt.Errorf("failed to read product %d: %w", line.ProductID, err)
		}

		if !prod.InStock(line.Quantity) {
			tx.Rollback()
			return nil, errs.NewInsufficientStockError(prod.Name, line.Quantity, prod.Stock)
		}

		price := prod.EffectivePrice()
		lineSubtotal := price * int64(line.Quantity)
		subtotal += lineSubtotal

		if orderType == "" {
			orderType = strings.ToUpper(prod.Category.Slug)
		}

		items = append(items, OrderItem{
			ProductID:           prod.ID,
			ProductName:         prod.Name,
			ProductImage:        prod.PrimaryImage(),
			Price:               price,
			Quantity:            line.Quantity,
			SelectedSize:        line.SelectedSize,
			SelectedColor:       line.SelectedColor,
			SpecialInstructions: line.SpecialInstructions,
			Subtotal:            lineSubtotal,
		})
	}

	deliveryCharge := DeliveryChargeFor(subtotal,
		s.config.Store.FreeDeliveryThreshold, s.config.Store.DeliveryCharge)

	newOrder := Order{
		OrderNumber:     s.numbers.Next(now),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryCity:    req.DeliveryCity,
		DeliveryNotes:   req.DeliveryNotes,
		Subtotal:        subtotal,
		DeliveryCharge:  deliveryCharge,
		Discount:        0, // Reserved for future promotions; nothing sets it today.
		TotalAmount:     subtotal + deliveryCharge,
		PaymentStatus:   PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		OrderStatus:     OrderStatusPending,
		OrderType:       orderType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := tx.Create(&newOrder).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A duplicate order number means the generator is
			// misconfigured (e.g. two processes sharing a clock-derived
			// sequence). Never retried with the same number.
			s.logger.WithFields(logrus.Fields{
				"order_number": newOrder.OrderNumber,
			}).Error("order number collision, aborting order")
			return nil, fmt.Errorf("order number collision for %s: %w", newOrder.OrderNumber, err)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = newOrder.ID
		items[i].CreatedAt = now
		if err := tx.Create(&items[i]).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}

		// The conditional decrement re-validates the pre-check under
		// the transaction, so two concurrent checkouts can never drive
		// stock below zero.
		if _, err := s.productService.DecrementStock(tx, items[i].ProductID, items[i].Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	newOrder.Items = items

	if s.config.IsTrackedOrderType(orderType) {
		tracking := DeliveryTracking{
			OrderID:       newOrder.ID,
			Status:        DeliveryStatusOrderPlaced,
			StatusMessage: "Your order has been placed",
			LastUpdated:   now,
			CreatedAt:     now,
		}
		if err := tx.Create(&tracking).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create delivery tracking: %w", err)
		}
		newOrder.Tracking = &tracking
	}

	if err := s.cartService.ClearCartTx(tx, userCart.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": newOrder.OrderNumber,
		"order_type":   newOrder.OrderType,
		"total":        newOrder.TotalAmount,
		"items":        len(newOrder.Items),
	}).Info("order placed")

	return &newOrder, nil
}

// GetOrder retrieves a single order by ID
func (s *Service) GetOrder(id uint) (*Order, error) {
	var o Order
	result := s.db.Preload("Items").Preload("Tracking").Where("id = ?", id).First(&o)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("order", id)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &o, nil
}

// GetOrderByNumber retrieves a single order by order number
func (s *Service) GetOrderByNumber(orderNumber string) (*Order, error) {
	var o Order
	result := s.db.Preload("Items").Preload("Tracking").
		Where("order_number = ?", orderNumber).First(&o)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("order", orderNumber)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &o, nil
}

// GetOrders retrieves orders newest-first with optional status filter
// and pagination.
func (s *Service) GetOrders(req *OrderListRequest) (*OrderListResponse, error) {
	var orders []Order
	var total int64

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Order{}).Preload("Items").Preload("Tracking")

	if req.Status != "" {
		status, err := ParseOrderStatus(req.Status)
		if err != nil {
			return nil, err
		}
		query = query.Where("order_status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// UpdateOrderStatus sets an order's fulfillment status and, when the
// order has a tracking record, applies the matching tracking update in
// the same transaction, so readers never observe one without the other.
// The tracking record is never created here.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uint, statusValue string) (*Order, error) {
	status, err := ParseOrderStatus(statusValue)
	if err != nil {
		return nil, err
	}

	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin status transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.Model(&Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"order_status": status,
		"updated_at":   now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if o.Tracking != nil {
		if transition, ok := TrackingTransitionFor(status); ok {
			updates := map[string]interface{}{
				"status":         transition.Status,
				"status_message": transition.Message,
				"last_updated":   now,
			}
			if status == OrderStatusDelivered {
				updates["actual_delivery_time"] = now
			}
			if err := tx.Model(&DeliveryTracking{}).
				Where("order_id = ?", orderID).Updates(updates).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to update delivery tracking: %w", err)
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit status transaction: %w", err)
	}

	s.invalidateTrackingCache(ctx, o.OrderNumber)

	s.logger.WithFields(logrus.Fields{
		"order_number": o.OrderNumber,
		"from":         o.OrderStatus,
		"to":           status,
	}).Info("order status updated")

	return s.GetOrder(orderID)
}

// UpdatePaymentStatus records a payment status update delivered by an
// external actor. Completing payment on a PENDING order auto-advances
// the fulfillment status to CONFIRMED: a paid order may not sit in
// PENDING.
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID uint, req *PaymentUpdateRequest) (*Order, error) {
	status, err := ParsePaymentStatus(req.Status)
	if err != nil {
		return nil, err
	}

	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updates := map[string]interface{}{
		"payment_status": status,
		"updated_at":     now,
	}
	if req.TransactionID != "" {
		updates["transaction_id"] = req.TransactionID
	}

	if err := s.db.WithContext(ctx).Model(&Order{}).
		Where("id = ?", orderID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_number":   o.OrderNumber,
		"payment_status": status,
	}).Info("payment status updated")

	if status == PaymentStatusCompleted && o.OrderStatus == OrderStatusPending {
		return s.UpdateOrderStatus(ctx, orderID, string(OrderStatusConfirmed))
	}

	return s.GetOrder(orderID)
}

// GetTrackingByOrderNumber returns the tracking record for an order,
// read through a short-lived Redis cache since this backs the public
// tracking page.
func (s *Service) GetTrackingByOrderNumber(ctx context.Context, orderNumber string) (*TrackingView, error) {
	cacheKey := trackingCacheKey(orderNumber)

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var view TrackingView
			if err := json.Unmarshal([]byte(cached), &view); err == nil {
				return &view, nil
			}
		}
	}

	o, err := s.GetOrderByNumber(orderNumber)
	if err != nil {
		return nil, err
	}
	if o.Tracking == nil {
		return nil, errs.NewNotFoundError("tracking", orderNumber)
	}

	view := &TrackingView{
		ID:                    o.Tracking.ID,
		OrderNumber:           o.OrderNumber,
		Status:                string(o.Tracking.Status),
		StatusDisplayName:     o.Tracking.Status.DisplayName(),
		StatusMessage:         o.Tracking.StatusMessage,
		CourierName:           o.Tracking.CourierName,
		CourierPhone:          o.Tracking.CourierPhone,
		EstimatedDeliveryTime: o.Tracking.EstimatedDeliveryTime,
		ActualDeliveryTime:    o.Tracking.ActualDeliveryTime,
		LastUpdated:           o.Tracking.LastUpdated,
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(view); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, s.config.Store.TrackingCacheTTL)
		}
	}

	return view, nil
}

// AssignCourier sets the courier details on an order's tracking record.
func (s *Service) AssignCourier(ctx context.Context, orderNumber string, req *AssignCourierRequest) (*TrackingView, error) {
	o, err := s.GetOrderByNumber(orderNumber)
	if err != nil {
		return nil, err
	}
	if o.Tracking == nil {
		return nil, errs.NewNotFoundError("tracking", orderNumber)
	}

	now := s.now().UTC()
	updates := map[string]interface{}{
		"courier_name":  req.CourierName,
		"courier_phone": req.CourierPhone,
		"last_updated":  now,
	}
	if req.EstimatedDeliveryTime != nil {
		updates["estimated_delivery_time"] = req.EstimatedDeliveryTime
	}

	if err := s.db.WithContext(ctx).Model(&DeliveryTracking{}).
		Where("order_id = ?", o.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to assign courier: %w", err)
	}

	s.invalidateTrackingCache(ctx, orderNumber)

	return s.GetTrackingByOrderNumber(ctx, orderNumber)
}

// Private helper methods

func trackingCacheKey(orderNumber string) string {
	return fmt.Sprintf("tracking:order:%s", orderNumber)
}

func (s *Service) invalidateTrackingCache(ctx context.Context, orderNumber string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, trackingCacheKey(orderNumber)).Err(); err != nil {
		// Cache invalidation failure only delays the public tracking
		// view by the cache TTL.
		s.logger.WithField("order_number", orderNumber).
			WithError(err).Warn("failed to invalidate tracking cache")
	}
}
