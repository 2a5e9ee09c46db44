// internal/services/inventory_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/utils"
)

// InventoryService owns the stock ledger: every stock change goes through
// AdjustStock so that products.stock stays the running sum of inventory
// records and alert rules get re-evaluated after each committed change.
type InventoryService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type AdjustStockRequest struct {
	ProductID uuid.UUID          `json:"product_id" validate:"required"`
	SKUID     *uuid.UUID         `json:"sku_id,omitempty"`
	Type      models.StockOpType `json:"type" validate:"required,oneof=in out"`
	Quantity  int                `json:"quantity" validate:"required,min=1"`
	Reason    string             `json:"reason" validate:"required,max=255"`
	Remark    string             `json:"remark,omitempty"`
}

type AlertRuleRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	SKUID     *uuid.UUID `json:"sku_id,omitempty"`
	MinStock  int        `json:"min_stock" validate:"min=0"`
	MaxStock  int        `json:"max_stock" validate:"min=1"`
}

type RecordSearchParams struct {
	utils.PaginationParams
	ProductID *uuid.UUID          `json:"product_id,omitempty"`
	Type      *models.StockOpType `json:"type,omitempty"`
	DateFrom  *time.Time          `json:"date_from,omitempty"`
	DateTo    *time.Time          `json:"date_to,omitempty"`
}

type AlertSearchParams struct {
	utils.PaginationParams
	ProductID *uuid.UUID        `json:"product_id,omitempty"`
	AlertType *models.AlertType `json:"alert_type,omitempty"`
	Status    *models.AlertStatus `json:"status,omitempty"`
}

func NewInventoryService(db *gorm.DB, notificationService *NotificationService) *InventoryService {
	return &InventoryService{
		db:                  db,
		notificationService: notificationService,
	}
}

// AdjustStock applies one stock movement atomically and appends the matching
// ledger row. Outbound moves use a conditional decrement so two concurrent
// requests can never drive stock below zero.
func (s *InventoryService) AdjustStock(operatorID uuid.UUID, req *AdjustStockRequest) (*models.InventoryRecord, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var record *models.InventoryRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		switch req.Type {
		case models.StockOpOut:
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", req.ProductID, req.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", req.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		case models.StockOpIn:
			if err := tx.Model(&models.Product{}).
				Where("id = ?", req.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", req.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to increment stock: %w", err)
			}
		default:
			return fmt.Errorf("unknown stock operation type %q", req.Type)
		}

		if req.SKUID != nil {
			if err := s.adjustSKUStock(tx, req); err != nil {
				return err
			}
		}

		// Re-read inside the transaction so the ledger snapshot matches the
		// committed counter.
		if err := tx.First(&product, "id = ?", req.ProductID).Error; err != nil {
			return fmt.Errorf("failed to reload product: %w", err)
		}

		record = &models.InventoryRecord{
			ProductID:    req.ProductID,
			SKUID:        req.SKUID,
			Type:         req.Type,
			Quantity:     req.Quantity,
			CurrentStock: product.Stock,
			Reason:       req.Reason,
			Remark:       req.Remark,
			OperatorID:   operatorID,
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create inventory record: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	// Alert evaluation is best effort; a failure here never rolls back the
	// committed stock change.
	s.EvaluateAlerts(req.ProductID)

	return record, nil
}

func (s *InventoryService) adjustSKUStock(tx *gorm.DB, req *AdjustStockRequest) error {
	var sku models.ProductSKU
	if err := tx.First(&sku, "id = ? AND product_id = ?", *req.SKUID, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSKUNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if req.Type == models.StockOpOut {
		res := tx.Model(&models.ProductSKU{}).
			Where("id = ? AND stock >= ?", *req.SKUID, req.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", req.Quantity))
		if res.Error != nil {
			return fmt.Errorf("failed to decrement sku stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		return nil
	}

	if err := tx.Model(&models.ProductSKU{}).
		Where("id = ?", *req.SKUID).
		UpdateColumn("stock", gorm.Expr("stock + ?", req.Quantity)).Error; err != nil {
		return fmt.Errorf("failed to increment sku stock: %w", err)
	}
	return nil
}

// EvaluateAlerts re-checks every active alert rule for the product. A rule
// flips to low at or below min_stock, to high at or above max_stock, and back
// to none once stock returns inside the band. Notifications fire only on the
// transition into low or high.
func (s *InventoryService) EvaluateAlerts(productID uuid.UUID) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		logrus.WithError(err).WithField("product_id", productID).
			Warn("Alert evaluation skipped: product lookup failed")
		return
	}

	var rules []models.InventoryAlert
	if err := s.db.Where("product_id = ? AND status = ?", productID, models.AlertStatusActive).
		Find(&rules).Error; err != nil {
		logrus.WithError(err).WithField("product_id", productID).
			Warn("Alert evaluation skipped: rule lookup failed")
		return
	}

	for i := range rules {
		rule := &rules[i]
		next := classifyStock(product.Stock, rule.MinStock, rule.MaxStock)
		if next == rule.AlertType {
			continue
		}

		if err := s.db.Model(rule).UpdateColumn("alert_type", next).Error; err != nil {
			logrus.WithError(err).WithField("alert_id", rule.ID).
				Warn("Failed to update alert state")
			continue
		}
		rule.AlertType = next

		if next != models.AlertTypeNone && s.notificationService != nil {
			s.notificationService.SendStockAlertNotification(&product, rule)
		}
	}
}

func classifyStock(stock, minStock, maxStock int) models.AlertType {
	switch {
	case stock <= minStock:
		return models.AlertTypeLow
	case stock >= maxStock:
		return models.AlertTypeHigh
	default:
		return models.AlertTypeNone
	}
}

func (s *InventoryService) ListRecords(params RecordSearchParams) ([]models.InventoryRecord, int64, error) {
	query := s.db.Model(&models.InventoryRecord{}).Preload("Product")

	if params.ProductID != nil {
		query = query.Where("product_id = ?", *params.ProductID)
	}
	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.DateFrom != nil {
		query = query.Where("created_at >= ?", *params.DateFrom)
	}
	if params.DateTo != nil {
		query = query.Where("created_at <= ?", *params.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory records: %w", err)
	}

	allowedSortFields := []string{"created_at", "quantity", "current_stock"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var records []models.InventoryRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch inventory records: %w", err)
	}

	return records, total, nil
}

func (s *InventoryService) CreateAlertRule(req *AlertRuleRequest) (*models.InventoryAlert, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.MinStock >= req.MaxStock {
		return nil, ErrInvalidAlertRange
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	dup := s.db.Model(&models.InventoryAlert{}).Where("product_id = ?", req.ProductID)
	if req.SKUID != nil {
		dup = dup.Where("sku_id = ?", *req.SKUID)
	} else {
		dup = dup.Where("sku_id IS NULL")
	}
	var count int64
	if err := dup.Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrAlertRuleExists
	}

	rule := &models.InventoryAlert{
		ProductID: req.ProductID,
		SKUID:     req.SKUID,
		MinStock:  req.MinStock,
		MaxStock:  req.MaxStock,
		AlertType: classifyStock(product.Stock, req.MinStock, req.MaxStock),
		Status:    models.AlertStatusActive,
	}
	if err := s.db.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create alert rule: %w", err)
	}

	return rule, nil
}

func (s *InventoryService) UpdateAlertRule(id uuid.UUID, req *AlertRuleRequest) (*models.InventoryAlert, error) {
	if req.MinStock >= req.MaxStock {
		return nil, ErrInvalidAlertRange
	}

	var rule models.InventoryAlert
	if err := s.db.First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertRuleNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", rule.ProductID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{
		"min_stock":  req.MinStock,
		"max_stock":  req.MaxStock,
		"alert_type": classifyStock(product.Stock, req.MinStock, req.MaxStock),
	}
	if err := s.db.Model(&rule).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update alert rule: %w", err)
	}

	s.db.First(&rule, "id = ?", id)
	return &rule, nil
}

func (s *InventoryService) DeleteAlertRule(id uuid.UUID) error {
	res := s.db.Delete(&models.InventoryAlert{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete alert rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlertRuleNotFound
	}
	return nil
}

func (s *InventoryService) SetAlertRuleStatus(id uuid.UUID, status models.AlertStatus) error {
	res := s.db.Model(&models.InventoryAlert{}).Where("id = ?", id).
		UpdateColumn("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update alert rule status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlertRuleNotFound
	}
	return nil
}

func (s *InventoryService) ListAlertRules(params AlertSearchParams) ([]models.InventoryAlert, int64, error) {
	query := s.db.Model(&models.InventoryAlert{}).Preload("Product")

	if params.ProductID != nil {
		query = query.Where("product_id = ?", *params.ProductID)
	}
	if params.AlertType != nil {
		query = query.Where("alert_type = ?", *params.AlertType)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count alert rules: %w", err)
	}

	allowedSortFields := []string{"created_at", "min_stock", "max_stock"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var rules []models.InventoryAlert
	if err := query.Find(&rules).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch alert rules: %w", err)
	}

	return rules, total, nil
}

// ListTriggeredAlerts returns active rules currently in a low or high state.
func (s *InventoryService) ListTriggeredAlerts() ([]models.InventoryAlert, error) {
	var rules []models.InventoryAlert
	if err := s.db.Preload("Product").
		Where("status = ? AND alert_type <> ?", models.AlertStatusActive, models.AlertTypeNone).
		Order("updated_at DESC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch triggered alerts: %w", err)
	}
	return rules, nil
}
