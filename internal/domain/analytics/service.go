// internal/domain/analytics/service.go
package analytics

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Service handles analytics business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	now    func() time.Time
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
		now:    time.Now,
	}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	// Order metrics
	TotalOrders     int64 `json:"total_orders"`
	PendingOrders   int64 `json:"pending_orders"`
	DeliveredOrders int64 `json:"delivered_orders"`
	CancelledOrders int64 `json:"cancelled_orders"`
	OrdersToday     int64 `json:"orders_today"`

	// Revenue metrics, in the minor currency unit. Cancelled orders
	// are excluded.
	TotalRevenue     int64 `json:"total_revenue"`
	RevenueToday     int64 `json:"revenue_today"`
	RevenueThisWeek  int64 `json:"revenue_this_week"`
	RevenueThisMonth int64 `json:"revenue_this_month"`

	// Product metrics
	TotalProducts      int64 `json:"total_products"`
	AvailableProducts  int64 `json:"available_products"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`
	LowStockProducts   int64 `json:"low_stock_products"`
}

// GetDashboardStats computes the admin dashboard summary
func (s *Service) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := s.now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := todayStart.AddDate(0, 0, -int(todayStart.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	orderCounts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalOrders, s.db.Model(&order.Order{})},
		{&stats.PendingOrders, s.db.Model(&order.Order{}).
			Where("order_status = ?", order.OrderStatusPending)},
		{&stats.DeliveredOrders, s.db.Model(&order.Order{}).
			Where("order_status = ?", order.OrderStatusDelivered)},
		{&stats.CancelledOrders, s.db.Model(&order.Order{}).
			Where("order_status = ?", order.OrderStatusCancelled)},
		{&stats.OrdersToday, s.db.Model(&order.Order{}).
			Where("created_at >= ?", todayStart)},
	}
	for _, c := range orderCounts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count orders: %w", err)
		}
	}

	revenues := []struct {
		dest  *int64
		since *time.Time
	}{
		{&stats.TotalRevenue, nil},
		{&stats.RevenueToday, &todayStart},
		{&stats.RevenueThisWeek, &weekStart},
		{&stats.RevenueThisMonth, &monthStart},
	}
	for _, r := range revenues {
		total, err := s.revenueSince(r.since)
		if err != nil {
			return nil, err
		}
		*r.dest = total
	}

	productCounts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalProducts, s.db.Model(&product.Product{})},
		{&stats.AvailableProducts, s.db.Model(&product.Product{}).
			Where("is_available = ?", true)},
		{&stats.OutOfStockProducts, s.db.Model(&product.Product{}).
			Where("stock = 0")},
		{&stats.LowStockProducts, s.db.Model(&product.Product{}).
			Where("stock > 0 AND stock <= ?", 5)},
	}
	for _, c := range productCounts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
	}

	return stats, nil
}

func (s *Service) revenueSince(since *time.Time) (int64, error) {
	var total int64
	query := s.db.Model(&order.Order{}).
		Where("order_status != ?", order.OrderStatusCancelled)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	if err := query.Select("COALESCE(SUM(total_amount), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, nil
}
