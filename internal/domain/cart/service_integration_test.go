package cart_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// CartServiceIntegrationTestSuite verifies cart behavior against a real
// PostgreSQL container.
type CartServiceIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB

	productService *product.Service
	cartService    *cart.Service

	category product.Category
}

func (suite *CartServiceIntegrationTestSuite) SetupSuite() {
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
	))

	cfg := &config.Config{}
	suite.productService = product.NewService(db, cfg)
	suite.cartService = cart.NewService(db, suite.productService, cfg)
}

func (suite *CartServiceIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE cart_items, carts, products, categories RESTART IDENTITY CASCADE",
	).Error)

	suite.category = product.Category{Name: "Food", Slug: "food", IsActive: true}
	suite.Require().NoError(suite.db.Create(&suite.category).Error)
}

func (suite *CartServiceIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CartServiceIntegrationTestSuite) createProduct(name string, price int64, discountPrice *int64, stock int, available bool) product.Product {
	p := product.Product{
		Name:          name,
		Price:         price,
		DiscountPrice: discountPrice,
		Stock:         stock,
		CategoryID:    suite.category.ID,
		IsAvailable:   available,
	}
	suite.Require().NoError(suite.db.Create(&p).Error)
	return p
}

func (suite *CartServiceIntegrationTestSuite) TestGetCart_CreatesEmptyCartOnFirstAccess() {
	view, err := suite.cartService.GetCart("fresh-session")
	suite.Require().NoError(err)

	suite.Empty(view.Items)
	suite.Equal(int64(0), view.Subtotal)
	suite.Equal(0, view.TotalItems)
}

func (suite *CartServiceIntegrationTestSuite) TestAddToCart_NewLine() {
	p := suite.createProduct("Chicken Momo", 50000, nil, 10, true)

	view, err := suite.cartService.AddToCart("session-1", &cart.AddToCartRequest{
		ProductID:     p.ID,
		Quantity:      2,
		SelectedSize:  "L",
		SelectedColor: "Red",
	})
	suite.Require().NoError(err)

	suite.Require().Len(view.Items, 1)
	suite.Equal("Chicken Momo", view.Items[0].ProductName)
	suite.Equal(2, view.Items[0].Quantity)
	suite.Equal("L", view.Items[0].SelectedSize)
	suite.Equal(int64(100000), view.Items[0].Subtotal)
	suite.Equal(int64(100000), view.Subtotal)
	suite.Equal(2, view.TotalItems)
}

func (suite *CartServiceIntegrationTestSuite) TestAddToCart_MergesExistingLine() {
	p := suite.createProduct("Chicken Momo", 50000, nil, 10, true)

	_, err := suite.cartService.AddToCart("session-2", &cart.AddToCartRequest{
		ProductID:    p.ID,
		Quantity:     2,
		SelectedSize: "M",
	})
	suite.Require().NoError(err)

	view, err := suite.cartService.AddToCart("session-2", &cart.AddToCartRequest{
		ProductID:    p.ID,
		Quantity:     3,
		SelectedSize: "L",
	})
	suite.Require().NoError(err)

	// One line with summed quantity; latest attributes win
	suite.Require().Len(view.Items, 1)
	suite.Equal(5, view.Items[0].Quantity)
	suite.Equal("L", view.Items[0].SelectedSize)
}

func (suite *CartServiceIntegrationTestSuite) TestAddToCart_MergedQuantityExceedsStock() {
	p := suite.createProduct("Veg Momo", 40000, nil, 4, true)

	_, err := suite.cartService.AddToCart("session-3", &cart.AddToCartRequest{
		ProductID: p.ID,
		Quantity:  3,
	})
	suite.Require().NoError(err)

	_, err = suite.cartService.AddToCart("session-3", &cart.AddToCartRequest{
		ProductID: p.ID,
		Quantity:  2,
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrInsufficientStock))

	// Original line unchanged
	view, err := suite.cartService.GetCart("session-3")
	suite.Require().NoError(err)
	suite.Require().Len(view.Items, 1)
	suite.Equal(3, view.Items[0].Quantity)
}

func (suite *CartServiceIntegrationTestSuite) TestAddToCart_UnavailableProduct() {
	p := suite.createProduct("Discontinued Thali", 60000, nil, 10, false)

	_, err := suite.cartService.AddToCart("session-4", &cart.AddToCartRequest{
		ProductID: p.ID,
		Quantity:  1,
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrUnavailable))
}

func (suite *CartServiceIntegrationTestSuite) TestAddToCart_UnknownProduct() {
	_, err := suite.cartService.AddToCart("session-5", &cart.AddToCartRequest{
		ProductID: 99999,
		Quantity:  1,
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrNotFound))
}

func (suite *CartServiceIntegrationTestSuite) TestCartView_UsesDiscountPrice() {
	discount := int64(30000)
	p := suite.createProduct("Jhol Momo", 45000, &discount, 10, true)

	view, err := suite.cartService.AddToCart("session-6", &cart.AddToCartRequest{
		ProductID: p.ID,
		Quantity:  2,
	})
	suite.Require().NoError(err)

	suite.Equal(int64(60000), view.Items[0].Subtotal)
	suite.Equal(int64(60000), view.Subtotal)
	suite.Require().NotNil(view.Items[0].DiscountPrice)
	suite.Equal(int64(30000), *view.Items[0].DiscountPrice)
}

func (suite *CartServiceIntegrationTestSuite) TestUpdateCartItem_ChangesQuantity() {
	p := suite.createProduct("Chowmein", 35000, nil, 10, true)

	added, err := suite.cartService.AddToCart("session-7", &cart.AddToCartRequest{
		ProductID: p.ID,
		Quantity:  1,
	})
	suite.Require().NoError(err)

	view, err := suite.cartService.UpdateCartItem("session-7", added.Items[0].ID,
		&cart.UpdateCartItemRequest{Quantity: 4})
	suite.Require().NoError(err)

	suite.Equal(4, view.Items[0].Quantity)
	suite.Equal(int64(140000), view.Subtotal)
}

func (suite *CartServiceIntegrationTestSuite) TestUpdateCartItem_ZeroQuantityRemovesLine() {
	p := suite.createProduct("Chowmein", 35000, nil, 10, true)

	added, err := suite.cartService.AddToCart("session-8", &cart.AddToCartRequest{
		ProductID: p.ID,
		Quantity:  2,
	})
	suite.Require().NoError(err)

	view, err := suite.cartService.UpdateCartItem("session-8", added.Items[0].ID,
		&cart.UpdateCartItemRequest{Quantity: 0})
	suite.Require().NoError(err)

	suite.Empty(view.Items)
}

func (suite *CartServiceIntegrationTestSuite) TestRemoveFromCart() {
	first := suite.createProduct("Momo", 50000, nil, 10, true)
	second := suite.createProduct("Thukpa", 55000, nil, 10, true)

	_, err := suite.cartService.AddToCart("session-9", &cart.AddToCartRequest{ProductID: first.ID, Quantity: 1})
	suite.Require().NoError(err)
	added, err := suite.cartService.AddToCart("session-9", &cart.AddToCartRequest{ProductID: second.ID, Quantity: 1})
	suite.Require().NoError(err)

	view, err := suite.cartService.RemoveFromCart("session-9", added.Items[1].ID)
	suite.Require().NoError(err)

	suite.Require().Len(view.Items, 1)
	suite.Equal(first.ID, view.Items[0].ProductID)
}

func (suite *CartServiceIntegrationTestSuite) TestRemoveFromCart_UnknownItem() {
	_, err := suite.cartService.GetOrCreateCart("session-10")
	suite.Require().NoError(err)

	_, err = suite.cartService.RemoveFromCart("session-10", 99999)
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrNotFound))
}

func (suite *CartServiceIntegrationTestSuite) TestClearCart() {
	p := suite.createProduct("Momo", 50000, nil, 10, true)

	_, err := suite.cartService.AddToCart("session-11", &cart.AddToCartRequest{ProductID: p.ID, Quantity: 2})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.cartService.ClearCart("session-11"))

	view, err := suite.cartService.GetCart("session-11")
	suite.Require().NoError(err)
	suite.Empty(view.Items)
}

func (suite *CartServiceIntegrationTestSuite) TestCartsAreIsolatedBySession() {
	p := suite.createProduct("Momo", 50000, nil, 10, true)

	_, err := suite.cartService.AddToCart("session-a", &cart.AddToCartRequest{ProductID: p.ID, Quantity: 1})
	suite.Require().NoError(err)

	view, err := suite.cartService.GetCart("session-b")
	suite.Require().NoError(err)
	suite.Empty(view.Items)
}

func TestCartServiceIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(CartServiceIntegrationTestSuite))
}
