package order_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// OrderServiceIntegrationTestSuite verifies checkout and lifecycle
// behavior against a real PostgreSQL container.
type OrderServiceIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB

	cfg            *config.Config
	productService *product.Service
	cartService    *cart.Service
	orderService   *order.Service

	now time.Time

	foodCategory  product.Category
	shoesCategory product.Category
}

func (suite *OrderServiceIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{
		TranslateError: true,
	})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&product.Category{},
		&product.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
		&order.DeliveryTracking{},
	))

	suite.cfg = &config.Config{
		Store: config.StoreConfig{
			Currency:              "NPR",
			FreeDeliveryThreshold: 100000,
			DeliveryCharge:        10000,
			TrackedOrderTypes:     []string{"FOOD"},
			TrackingCacheTTL:      30 * time.Second,
		},
	}
	suite.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	suite.productService = product.NewService(db, suite.cfg)
	suite.cartService = cart.NewService(db, suite.productService, suite.cfg)
	suite.orderService = order.NewService(db, nil, suite.cfg,
		suite.cartService, suite.productService, logger,
		order.WithClock(func() time.Time { return suite.now }),
	)
}

func (suite *OrderServiceIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE order_items, delivery_tracking, orders, cart_items, carts, products, categories RESTART IDENTITY CASCADE",
	).Error)

	suite.foodCategory = product.Category{Name: "Food", Slug: "food", IsActive: true}
	suite.Require().NoError(suite.db.Create(&suite.foodCategory).Error)

	suite.shoesCategory = product.Category{Name: "Shoes", Slug: "shoes", IsActive: true}
	suite.Require().NoError(suite.db.Create(&suite.shoesCategory).Error)
}

func (suite *OrderServiceIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderServiceIntegrationTestSuite) createProduct(name string, categoryID uint, price int64, discountPrice *int64, stock int) product.Product {
	p := product.Product{
		Name:          name,
		Price:         price,
		DiscountPrice: discountPrice,
		Stock:         stock,
		CategoryID:    categoryID,
		IsAvailable:   true,
	}
	suite.Require().NoError(suite.db.Create(&p).Error)
	return p
}

func (suite *OrderServiceIntegrationTestSuite) addToCart(sessionID string, productID uint, quantity int) {
	_, err := suite.cartService.AddToCart(sessionID, &cart.AddToCartRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
	suite.Require().NoError(err)
}

func orderRequest() *order.CreateOrderRequest {
	return &order.CreateOrderRequest{
		CustomerName:    "Sita Sharma",
		CustomerPhone:   "+9779812345678",
		DeliveryAddress: "Baneshwor, Kathmandu",
		DeliveryCity:    "Kathmandu",
		PaymentMethod:   "CASH_ON_DELIVERY",
	}
}

func (suite *OrderServiceIntegrationTestSuite) TestPlaceOrder_FoodOrder() {
	ctx := context.Background()
	p := suite.createProduct("Chicken Momo", suite.foodCategory.ID, 50000, nil, 5)
	suite.addToCart("session-1", p.ID, 3)

	placed, err := suite.orderService.PlaceOrder(ctx, "session-1", orderRequest())
	suite.Require().NoError(err)

	suite.True(strings.HasPrefix(placed.OrderNumber, "ORD"))
	suite.Equal(int64(150000), placed.Subtotal)
	suite.Equal(int64(0), placed.DeliveryCharge) // free delivery at threshold
	suite.Equal(int64(150000), placed.TotalAmount)
	suite.Equal("FOOD", placed.OrderType)
	suite.Equal(order.OrderStatusPending, placed.OrderStatus)
	suite.Equal(order.PaymentStatusPending, placed.PaymentStatus)

	suite.Require().Len(placed.Items, 1)
	suite.Equal("Chicken Momo", placed.Items[0].ProductName)
	suite.Equal(int64(50000), placed.Items[0].Price)
	suite.Equal(3, placed.Items[0].Quantity)

	// FOOD orders get a tracking record
	suite.Require().NotNil(placed.Tracking)
	suite.Equal(order.DeliveryStatusOrderPlaced, placed.Tracking.Status)
	suite.Equal("Your order has been placed", placed.Tracking.StatusMessage)

	// Stock decremented
	refreshed, err := suite.productService.GetProduct(p.ID)
	suite.Require().NoError(err)
	suite.Equal(2, refreshed.Stock)

	// Cart emptied
	view, err := suite.cartService.GetCart("session-1")
	suite.Require().NoError(err)
	suite.Empty(view.Items)
}

func (suite *OrderServiceIntegrationTestSuite) TestPlaceOrder_DeliveryChargeBelowThreshold() {
	ctx := context.Background()
	p := suite.createProduct("Socks", suite.shoesCategory.ID, 33333, nil, 10)
	suite.addToCart("session-2", p.ID, 2)

	placed, err := suite.orderService.PlaceOrder(ctx, "session-2", orderRequest())
	suite.Require().NoError(err)

	suite.Equal(int64(66666), placed.Subtotal)
	suite.Equal(int64(10000), placed.DeliveryCharge)
	suite.Equal(int64(76666), placed.TotalAmount)
}

func (suite *OrderServiceIntegrationTestSuite) TestPlaceOrder_UsesDiscountPrice() {
	ctx := context.Background()
	discount := int64(40000)
	p := suite.createProduct("Running Shoes", suite.shoesCategory.ID, 50000, &discount, 5)
	suite.addToCart("session-3", p.ID, 1)

	placed, err := suite.orderService.PlaceOrder(ctx, "session-3", orderRequest())
	suite.Require().NoError(err)

	suite.Equal(int64(40000), placed.Subtotal)
	suite.Equal(int64(40000), placed.Items[0].Price)
}

func (suite *OrderServiceIntegrationTestSuite) TestPlaceOrder_NonTrackedOrderHasNoTracking() {
	ctx := context.Background()
	p := suite.createProduct("Leather Boots", suite.shoesCategory.ID, 120000, nil, 5)
	suite.addToCart("session-4", p.ID, 1)

	placed, err := suite.orderService.PlaceOrder(ctx, "session-4", orderRequest())
	suite.Require().NoError(err)

	suite.Equal("SHOES", placed.OrderType)
	suite.Nil(placed.Tracking)

	var trackingCount int64
	suite.db.Model(&order.DeliveryTracking{}).Count(&trackingCount)
	suite.Equal(int64(0), trackingCount)
}

func (suite *OrderServiceIntegrationTestSuite) TestPlaceOrder_NoCart() {
	_, err := suite.orderService.PlaceOrder(context.Background(), "no-such-session", orderRequest())
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrNotFound))
}

func (suite *OrderServiceIntegrationTestSuite) TestPlaceOrder_EmptyCart() {
	_, err := suite.cartService.GetOrCreateCart("session-5")
	suite.Require().NoError(err)

	_, err = suite.orderService.PlaceOrder(context.Background(), "session-5", orderRequest())
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrEmptyCart))
}

func (suite *OrderServiceIntegrationTestSuite) TestPlaceOrder_InsufficientStockRollsBackEverything() {
	ctx := context.Background()
	plenty := suite.createProduct("Chicken Momo", suite.foodCategory.ID, 50000, nil, 10)
	scarce := suite.createProduct("Veg Momo", suite.foodCategory.ID, 40000, nil, 2)

	suite.addToCart("session-6", plenty.ID, 2)
	suite.addToCart("session-6", scarce.ID, 2)

	// Stock drops between add-to-cart and checkout
	suite.Require().NoError(suite.db.Model(&product.Product{}).
		Where("id = ?", scarce.ID).Update("stock", 1).Error)

	_, err := suite.orderService.PlaceOrder(ctx, "session-6", orderRequest())
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrInsufficientStock))
	suite.Contains(err.Error(), "Veg Momo")

	// Nothing committed: no orders, stock intact, cart intact
	var orderCount int64
	suite.db.Model(&order.Order{}).Count(&orderCount)
	suite.Equal(int64(0), orderCount)

	refreshed, err := suite.productService.GetProduct(plenty.ID)
	suite.Require().NoError(err)
	suite.Equal(10, refreshed.Stock)

	view, err := suite.cartService.GetCart("session-6")
	suite.Require().NoError(err)
	suite.Len(view.Items, 2)
}

func (suite *OrderServiceIntegrationTestSuite) TestPlaceOrder_ConcurrentCheckoutsNeverOversell() {
	ctx := context.Background()
	p := suite.createProduct("Limited Sneakers", suite.shoesCategory.ID, 90000, nil, 5)

	suite.addToCart("racer-a", p.ID, 3)
	suite.addToCart("racer-b", p.ID, 3)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, sessionID := range []string{"racer-a", "racer-b"} {
		wg.Add(1)
		go func(sid string) {
			defer wg.Done()
			_, err := suite.orderService.PlaceOrder(ctx, sid, orderRequest())
			results <- err
		}(sessionID)
	}
	wg.Wait()
	close(results)

	var successes, stockFailures int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, errs.ErrInsufficientStock):
			stockFailures++
		default:
			suite.Failf("unexpected error", "%v", err)
		}
	}

	suite.Equal(1, successes)
	suite.Equal(1, stockFailures)

	refreshed, err := suite.productService.GetProduct(p.ID)
	suite.Require().NoError(err)
	suite.Equal(2, refreshed.Stock)
	suite.GreaterOrEqual(refreshed.Stock, 0)
}

func (suite *OrderServiceIntegrationTestSuite) placeFoodOrder(sessionID string) *order.Order {
	p := suite.createProduct("Thali Set "+sessionID, suite.foodCategory.ID, 60000, nil, 10)
	suite.addToCart(sessionID, p.ID, 1)

	placed, err := suite.orderService.PlaceOrder(context.Background(), sessionID, orderRequest())
	suite.Require().NoError(err)
	return placed
}

func (suite *OrderServiceIntegrationTestSuite) TestUpdateOrderStatus_DualWritesTracking() {
	ctx := context.Background()
	placed := suite.placeFoodOrder("session-7")

	updated, err := suite.orderService.UpdateOrderStatus(ctx, placed.ID, "OUT_FOR_DELIVERY")
	suite.Require().NoError(err)

	suite.Equal(order.OrderStatusOutForDelivery, updated.OrderStatus)
	suite.Require().NotNil(updated.Tracking)
	suite.Equal(order.DeliveryStatusOutForDelivery, updated.Tracking.Status)
	suite.Equal("Your order is out for delivery", updated.Tracking.StatusMessage)
	suite.Nil(updated.Tracking.ActualDeliveryTime)
}

func (suite *OrderServiceIntegrationTestSuite) TestUpdateOrderStatus_DeliveredSetsActualDeliveryTime() {
	ctx := context.Background()
	placed := suite.placeFoodOrder("session-8")

	updated, err := suite.orderService.UpdateOrderStatus(ctx, placed.ID, "DELIVERED")
	suite.Require().NoError(err)

	suite.Equal(order.OrderStatusDelivered, updated.OrderStatus)
	suite.Require().NotNil(updated.Tracking)
	suite.Equal(order.DeliveryStatusDelivered, updated.Tracking.Status)
	suite.Require().NotNil(updated.Tracking.ActualDeliveryTime)
	suite.True(updated.Tracking.ActualDeliveryTime.Equal(suite.now))
}

func (suite *OrderServiceIntegrationTestSuite) TestUpdateOrderStatus_NonTrackedOrderNeverGainsTracking() {
	ctx := context.Background()
	p := suite.createProduct("Trail Runners", suite.shoesCategory.ID, 80000, nil, 5)
	suite.addToCart("session-16", p.ID, 1)

	placed, err := suite.orderService.PlaceOrder(ctx, "session-16", orderRequest())
	suite.Require().NoError(err)
	suite.Require().Nil(placed.Tracking)

	updated, err := suite.orderService.UpdateOrderStatus(ctx, placed.ID, "DELIVERED")
	suite.Require().NoError(err)
	suite.Equal(order.OrderStatusDelivered, updated.OrderStatus)
	suite.Nil(updated.Tracking)

	// Status updates must not conjure a tracking record for an order
	// that started without one.
	var trackingCount int64
	suite.db.Model(&order.DeliveryTracking{}).Count(&trackingCount)
	suite.Equal(int64(0), trackingCount)
}

func (suite *OrderServiceIntegrationTestSuite) TestUpdateOrderStatus_InvalidStatus() {
	placed := suite.placeFoodOrder("session-9")

	_, err := suite.orderService.UpdateOrderStatus(context.Background(), placed.ID, "SHIPPED")
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrInvalidStatus))

	// Order untouched
	refreshed, err := suite.orderService.GetOrder(placed.ID)
	suite.Require().NoError(err)
	suite.Equal(order.OrderStatusPending, refreshed.OrderStatus)
}

func (suite *OrderServiceIntegrationTestSuite) TestUpdateOrderStatus_UnknownOrder() {
	_, err := suite.orderService.UpdateOrderStatus(context.Background(), 99999, "CONFIRMED")
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrNotFound))
}

func (suite *OrderServiceIntegrationTestSuite) TestUpdatePaymentStatus_CompletedConfirmsPendingOrder() {
	ctx := context.Background()
	placed := suite.placeFoodOrder("session-10")

	updated, err := suite.orderService.UpdatePaymentStatus(ctx, placed.ID, &order.PaymentUpdateRequest{
		Status:        "COMPLETED",
		TransactionID: "txn-123",
	})
	suite.Require().NoError(err)

	suite.Equal(order.PaymentStatusCompleted, updated.PaymentStatus)
	suite.Equal("txn-123", updated.TransactionID)
	suite.Equal(order.OrderStatusConfirmed, updated.OrderStatus)
	suite.Require().NotNil(updated.Tracking)
	suite.Equal("Your order has been confirmed", updated.Tracking.StatusMessage)
}

func (suite *OrderServiceIntegrationTestSuite) TestUpdatePaymentStatus_DoesNotRegressAdvancedOrder() {
	ctx := context.Background()
	placed := suite.placeFoodOrder("session-11")

	_, err := suite.orderService.UpdateOrderStatus(ctx, placed.ID, "PREPARING")
	suite.Require().NoError(err)

	updated, err := suite.orderService.UpdatePaymentStatus(ctx, placed.ID, &order.PaymentUpdateRequest{
		Status: "COMPLETED",
	})
	suite.Require().NoError(err)

	suite.Equal(order.PaymentStatusCompleted, updated.PaymentStatus)
	suite.Equal(order.OrderStatusPreparing, updated.OrderStatus)
}

func (suite *OrderServiceIntegrationTestSuite) TestUpdatePaymentStatus_FailedLeavesOrderPending() {
	ctx := context.Background()
	placed := suite.placeFoodOrder("session-12")

	updated, err := suite.orderService.UpdatePaymentStatus(ctx, placed.ID, &order.PaymentUpdateRequest{
		Status: "FAILED",
	})
	suite.Require().NoError(err)

	suite.Equal(order.PaymentStatusFailed, updated.PaymentStatus)
	suite.Equal(order.OrderStatusPending, updated.OrderStatus)
}

func (suite *OrderServiceIntegrationTestSuite) TestGetTrackingByOrderNumber() {
	ctx := context.Background()
	placed := suite.placeFoodOrder("session-13")

	view, err := suite.orderService.GetTrackingByOrderNumber(ctx, placed.OrderNumber)
	suite.Require().NoError(err)

	suite.Equal(placed.OrderNumber, view.OrderNumber)
	suite.Equal("ORDER_PLACED", view.Status)
	suite.Equal("Order Placed", view.StatusDisplayName)
	suite.Equal("Your order has been placed", view.StatusMessage)
}

func (suite *OrderServiceIntegrationTestSuite) TestGetTrackingByOrderNumber_NoTracking() {
	ctx := context.Background()
	p := suite.createProduct("Sandals", suite.shoesCategory.ID, 30000, nil, 5)
	suite.addToCart("session-14", p.ID, 1)

	placed, err := suite.orderService.PlaceOrder(ctx, "session-14", orderRequest())
	suite.Require().NoError(err)

	_, err = suite.orderService.GetTrackingByOrderNumber(ctx, placed.OrderNumber)
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrNotFound))
}

func (suite *OrderServiceIntegrationTestSuite) TestAssignCourier() {
	ctx := context.Background()
	placed := suite.placeFoodOrder("session-15")

	eta := suite.now.Add(45 * time.Minute)
	view, err := suite.orderService.AssignCourier(ctx, placed.OrderNumber, &order.AssignCourierRequest{
		CourierName:           "Ram Thapa",
		CourierPhone:          "+9779800000000",
		EstimatedDeliveryTime: &eta,
	})
	suite.Require().NoError(err)

	suite.Equal("Ram Thapa", view.CourierName)
	suite.Equal("+9779800000000", view.CourierPhone)
	suite.Require().NotNil(view.EstimatedDeliveryTime)
	suite.True(view.EstimatedDeliveryTime.Equal(eta))
}

func TestOrderServiceIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(OrderServiceIntegrationTestSuite))
}
