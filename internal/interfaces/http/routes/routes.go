// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/admin"
	"github.com/your-org/storefront-backend/internal/domain/analytics"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// SetupRoutes wires domain services and registers every API route
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client,
	cfg *config.Config, log *logrus.Logger) {

	productService := product.NewService(db, cfg)
	cartService := cart.NewService(db, productService, cfg)
	orderService := order.NewService(db, redisClient, cfg, cartService, productService, log)
	adminService := admin.NewService(db, cfg)
	analyticsService := analytics.NewService(db, cfg)

	productHandler := handlers.NewProductHandler(productService, cfg)
	cartHandler := handlers.NewCartHandler(cartService, cfg)
	orderHandler := handlers.NewOrderHandler(orderService, cfg)
	trackingHandler := handlers.NewTrackingHandler(orderService, cfg)
	authHandler := handlers.NewAuthHandler(adminService, cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, cfg)
	invoiceHandler := handlers.NewInvoiceHandler(orderService, cfg)

	// Public catalog
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}
	rg.GET("/categories", productHandler.GetCategories)

	// Cart routes keyed by anonymous shopping session
	cartRoutes := rg.Group("/cart")
	cartRoutes.Use(middleware.SessionID())
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.POST("/items", cartHandler.AddToCart)
		cartRoutes.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartRoutes.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cartRoutes.DELETE("", cartHandler.ClearCart)
	}

	// Order placement and customer lookup
	orders := rg.Group("/orders")
	orders.Use(middleware.SessionID())
	{
		orders.POST("", orderHandler.PlaceOrder)
		orders.GET("/:number", orderHandler.GetOrderByNumber)
	}

	// Public delivery tracking by order number
	rg.GET("/tracking/:number", trackingHandler.GetTracking)

	// Back-office
	adminRoutes := rg.Group("/admin")
	{
		adminRoutes.POST("/login", authHandler.Login)

		protected := adminRoutes.Group("")
		protected.Use(middleware.AdminAuth(cfg))
		{
			adminProducts := protected.Group("/products")
			{
				adminProducts.POST("", productHandler.CreateProduct)
				adminProducts.PUT("/:id", productHandler.UpdateProduct)
				adminProducts.DELETE("/:id", productHandler.DeleteProduct)
			}

			adminOrders := protected.Group("/orders")
			{
				adminOrders.GET("", orderHandler.GetOrders)
				adminOrders.GET("/:id", orderHandler.GetOrder)
				adminOrders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
				adminOrders.PUT("/:id/payment", orderHandler.UpdatePaymentStatus)
				adminOrders.GET("/:id/invoice", invoiceHandler.GenerateInvoice)
			}

			protected.PUT("/tracking/:number/courier", trackingHandler.AssignCourier)

			protected.GET("/analytics/dashboard", analyticsHandler.GetDashboard)
		}
	}
}
