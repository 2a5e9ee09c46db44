// internal/handlers/admin.go
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minimall/backend/internal/services"
	"github.com/minimall/backend/internal/utils"
)

type AdminHandler struct {
	adminService        *services.AdminService
	notificationService *services.NotificationService
}

func NewAdminHandler(adminService *services.AdminService, notificationService *services.NotificationService) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		notificationService: notificationService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	overview, err := h.adminService.GetDashboardOverview()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"overview": overview})
}

// GET /admin/stats/sales
func (h *AdminHandler) GetSalesSeries(c *gin.Context) {
	from, to := statsWindow(c)

	points, err := h.adminService.GetSalesSeries(from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"from":   from,
		"to":     to,
		"points": points,
	})
}

// GET /admin/stats/top-products
func (h *AdminHandler) GetTopProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, err := h.adminService.GetTopProducts(limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// GET /admin/stats/orders
func (h *AdminHandler) GetOrderStatusBreakdown(c *gin.Context) {
	breakdown, err := h.adminService.GetOrderStatusBreakdown()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"breakdown": breakdown})
}

// GET /admin/stats/users
func (h *AdminHandler) GetUserGrowth(c *gin.Context) {
	from, to := statsWindow(c)

	points, err := h.adminService.GetUserGrowth(from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"from":   from,
		"to":     to,
		"points": points,
	})
}

// GET /admin/notifications
func (h *AdminHandler) ListNotifications(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	notifications, err := h.notificationService.ListNotifications(unreadOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"notifications": notifications})
}

// PUT /admin/notifications/:id/read
func (h *AdminHandler) MarkNotificationRead(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"read": true})
}

// statsWindow parses the date range, defaulting to the last 30 days.
func statsWindow(c *gin.Context) (time.Time, time.Time) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if fromStr := c.Query("date_from"); fromStr != "" {
		if parsed, err := time.Parse("2006-01-02", fromStr); err == nil {
			from = parsed
		}
	}
	if toStr := c.Query("date_to"); toStr != "" {
		if parsed, err := time.Parse("2006-01-02", toStr); err == nil {
			to = parsed.AddDate(0, 0, 1)
		}
	}

	return from, to
}
