// internal/services/admin_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/minimall/backend/internal/models"
)

// AdminService aggregates dashboard statistics. All numbers are computed from
// the live tables; nothing here mutates state.
type AdminService struct {
	db *gorm.DB
}

type DashboardOverview struct {
	TotalUsers      int64   `json:"total_users"`
	TotalProducts   int64   `json:"total_products"`
	TotalOrders     int64   `json:"total_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	TriggeredAlerts int64   `json:"triggered_alerts"`
	NewUsersToday   int64   `json:"new_users_today"`
	OrdersToday     int64   `json:"orders_today"`
	RevenueToday    float64 `json:"revenue_today"`
}

type SalesPoint struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type TopProduct struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Sales     int64   `json:"sales"`
	Revenue   float64 `json:"revenue"`
}

type OrderStatusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// revenueStatuses are the order states that count toward revenue; pending and
// cancelled orders never do.
var revenueStatuses = []models.OrderStatus{
	models.OrderStatusPaid,
	models.OrderStatusShipped,
	models.OrderStatusCompleted,
}

func (s *AdminService) GetDashboardOverview() (*DashboardOverview, error) {
	overview := &DashboardOverview{}
	today := time.Now().Truncate(24 * time.Hour)

	if err := s.db.Model(&models.User{}).Count(&overview.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	s.db.Model(&models.User{}).Where("created_at >= ?", today).Count(&overview.NewUsersToday)

	s.db.Model(&models.Product{}).
		Where("status <> ?", models.ProductStatusDeleted).
		Count(&overview.TotalProducts)

	s.db.Model(&models.Order{}).Count(&overview.TotalOrders)
	s.db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPending).
		Count(&overview.PendingOrders)
	s.db.Model(&models.Order{}).Where("created_at >= ?", today).Count(&overview.OrdersToday)

	s.db.Model(&models.Order{}).
		Where("status IN ?", revenueStatuses).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&overview.TotalRevenue)
	s.db.Model(&models.Order{}).
		Where("status IN ? AND created_at >= ?", revenueStatuses, today).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&overview.RevenueToday)

	s.db.Model(&models.InventoryAlert{}).
		Where("status = ? AND alert_type <> ?", models.AlertStatusActive, models.AlertTypeNone).
		Count(&overview.TriggeredAlerts)

	return overview, nil
}

// GetSalesSeries returns a daily revenue series for the given window.
func (s *AdminService) GetSalesSeries(from, to time.Time) ([]SalesPoint, error) {
	var rows []struct {
		Day     time.Time
		Orders  int64
		Revenue float64
	}

	if err := s.db.Model(&models.Order{}).
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("status IN ? AND created_at BETWEEN ? AND ?", revenueStatuses, from, to).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	points := make([]SalesPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, SalesPoint{
			Date:    row.Day.Format("2006-01-02"),
			Orders:  row.Orders,
			Revenue: row.Revenue,
		})
	}
	return points, nil
}

func (s *AdminService) GetTopProducts(limit int) ([]TopProduct, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var rows []TopProduct
	if err := s.db.Model(&models.OrderItem{}).
		Select("order_items.product_id AS product_id, products.name AS name, SUM(order_items.quantity) AS sales, COALESCE(SUM(order_items.line_total), 0) AS revenue").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", revenueStatuses).
		Group("order_items.product_id, products.name").
		Order("sales DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}

	return rows, nil
}

func (s *AdminService) GetOrderStatusBreakdown() ([]OrderStatusCount, error) {
	var rows []OrderStatusCount
	if err := s.db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate order statuses: %w", err)
	}
	return rows, nil
}

// GetUserGrowth returns daily registration counts for the given window.
func (s *AdminService) GetUserGrowth(from, to time.Time) ([]SalesPoint, error) {
	var rows []struct {
		Day   time.Time
		Count int64
	}

	if err := s.db.Model(&models.User{}).
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(*) AS count").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate user growth: %w", err)
	}

	points := make([]SalesPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, SalesPoint{
			Date:   row.Day.Format("2006-01-02"),
			Orders: row.Count,
		})
	}
	return points, nil
}
