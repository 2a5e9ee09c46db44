// internal/services/notification_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/config"
	"github.com/minimall/backend/internal/models"
)

// NotificationService surfaces internal alerts on the admin dashboard.
// Email dispatch is a logged no-op until an SMTP sender is wired in.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{db: db, config: cfg}
}

// SendStockAlertNotification records a dashboard notification for a rule that
// just entered a low or high state.
func (s *NotificationService) SendStockAlertNotification(product *models.Product, rule *models.InventoryAlert) {
	var title, message string
	switch rule.AlertType {
	case models.AlertTypeLow:
		title = fmt.Sprintf("Low stock: %s", product.Name)
		message = fmt.Sprintf("Product %s (SKU %s) is down to %d units, at or below the minimum of %d.",
			product.Name, product.SKUCode, product.Stock, rule.MinStock)
	case models.AlertTypeHigh:
		title = fmt.Sprintf("Overstock: %s", product.Name)
		message = fmt.Sprintf("Product %s (SKU %s) holds %d units, at or above the maximum of %d.",
			product.Name, product.SKUCode, product.Stock, rule.MaxStock)
	default:
		return
	}

	notification := &models.AdminNotification{
		Type:              "stock_alert",
		Title:             title,
		Message:           message,
		Priority:          "high",
		RelatedResourceID: &product.ID,
	}
	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("product_id", product.ID).
			Error("Failed to create stock alert notification")
		return
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"stock":      product.Stock,
		"alert_type": rule.AlertType,
	}).Warn(title)

	s.sendEmail(s.config.Email.FromEmail, title, message)
}

// SendOrderNotification records a dashboard notification for order events.
func (s *NotificationService) SendOrderNotification(order *models.Order, event string) {
	notification := &models.AdminNotification{
		Type:              "order_" + event,
		Title:             fmt.Sprintf("Order %s %s", order.OrderNo, event),
		Message:           fmt.Sprintf("Order %s moved to %s, total %.2f.", order.OrderNo, order.Status, order.TotalAmount),
		Priority:          "medium",
		RelatedResourceID: &order.ID,
	}
	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).
			Error("Failed to create order notification")
	}
}

func (s *NotificationService) ListNotifications(unreadOnly bool) ([]models.AdminNotification, error) {
	query := s.db.Order("created_at DESC").Limit(100)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.AdminNotification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(id uuid.UUID) error {
	res := s.db.Model(&models.AdminNotification{}).
		Where("id = ? AND read_at IS NULL", id).
		UpdateColumn("read_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	return nil
}

func (s *NotificationService) sendEmail(to, subject, body string) {
	if s.config.Email.SMTPUsername == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Debug("SMTP not configured, skipping email")
		return
	}

	// TODO: wire up an SMTP sender once the ops mailbox exists.
	logrus.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Email queued")
	_ = body
}
