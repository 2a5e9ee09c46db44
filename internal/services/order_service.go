// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/utils"
)

// OrderService creates and transitions orders. Order creation reserves stock
// with conditional decrements inside a single transaction: either every line
// is reserved and the order lands in pending, or nothing is written.
type OrderService struct {
	db               *gorm.DB
	inventoryService *InventoryService
}

type OrderItemRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	SKUID     *uuid.UUID `json:"sku_id,omitempty"`
	Quantity  int        `json:"quantity" validate:"required,min=1"`
}

type ShippingAddressRequest struct {
	ReceiverName string `json:"receiver_name" validate:"required,max=100"`
	Phone        string `json:"phone" validate:"required,max=20"`
	Province     string `json:"province,omitempty"`
	City         string `json:"city,omitempty"`
	District     string `json:"district,omitempty"`
	Address      string `json:"address" validate:"required,max=255"`
	ZipCode      string `json:"zip_code,omitempty"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest      `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *ShippingAddressRequest `json:"shipping_address" validate:"required"`
	CouponID        *uuid.UUID              `json:"coupon_id,omitempty"`
	PaymentMethod   string                  `json:"payment_method,omitempty"`
	Remark          string                  `json:"remark,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
	Remark string             `json:"remark,omitempty"`
}

type BatchUpdateOrderStatusRequest struct {
	OrderIDs []uuid.UUID        `json:"order_ids" validate:"required,min=1"`
	Status   models.OrderStatus `json:"status" validate:"required"`
	Remark   string             `json:"remark,omitempty"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	UserID   *uuid.UUID          `json:"user_id,omitempty"`
	Status   *models.OrderStatus `json:"status,omitempty"`
	OrderNo  string              `json:"order_no,omitempty"`
	DateFrom *time.Time          `json:"date_from,omitempty"`
	DateTo   *time.Time          `json:"date_to,omitempty"`
}

// orderTransitions is the status machine: cancelled and completed are
// terminal, payment can only follow pending, shipping only paid.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:    {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped: {models.OrderStatusCompleted},
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func NewOrderService(db *gorm.DB, inventoryService *InventoryService) *OrderService {
	return &OrderService{
		db:               db,
		inventoryService: inventoryService,
	}
}

func (s *OrderService) CreateOrder(userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if req.ShippingAddress == nil {
		return nil, ErrMissingAddress
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	var order *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(req.Items))

		for _, line := range req.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("database error: %w", err)
			}
			if product.Status != models.ProductStatusOnSale {
				return fmt.Errorf("%w: %s", ErrProductNotFound, product.Name)
			}

			unitPrice := product.Price
			if line.SKUID != nil {
				var sku models.ProductSKU
				if err := tx.First(&sku, "id = ? AND product_id = ?", *line.SKUID, line.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return ErrSKUNotFound
					}
					return fmt.Errorf("database error: %w", err)
				}
				if sku.Price > 0 {
					unitPrice = sku.Price
				}

				res := tx.Model(&models.ProductSKU{}).
					Where("id = ? AND stock >= ?", *line.SKUID, line.Quantity).
					UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
				if res.Error != nil {
					return fmt.Errorf("failed to reserve sku stock: %w", res.Error)
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
				}
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}

			if err := tx.Model(&models.Product{}).
				Where("id = ?", line.ProductID).
				UpdateColumn("sales_count", gorm.Expr("sales_count + ?", line.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to update sales count: %w", err)
			}

			lineTotal := utils.LineTotal(line.Quantity, unitPrice)
			total = total.Add(decimal.NewFromFloat(lineTotal))

			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				SKUID:     line.SKUID,
				Quantity:  line.Quantity,
				UnitPrice: unitPrice,
				LineTotal: lineTotal,
			})
		}

		totalAmount, _ := total.Round(2).Float64()
		if !utils.ValidAmount(totalAmount) {
			return ErrInvalidAmount
		}

		if req.CouponID != nil {
			discounted, err := s.consumeCoupon(tx, userID, *req.CouponID, totalAmount)
			if err != nil {
				return err
			}
			totalAmount = discounted
		}

		order = &models.Order{
			UserID:        userID,
			OrderNo:       utils.GenerateOrderNo(),
			TotalAmount:   totalAmount,
			Status:        models.OrderStatusPending,
			PaymentMethod: req.PaymentMethod,
			CouponID:      req.CouponID,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}

		address := &models.ShippingAddress{
			OrderID:      order.ID,
			ReceiverName: req.ShippingAddress.ReceiverName,
			Phone:        req.ShippingAddress.Phone,
			Province:     req.ShippingAddress.Province,
			City:         req.ShippingAddress.City,
			District:     req.ShippingAddress.District,
			Address:      req.ShippingAddress.Address,
			ZipCode:      req.ShippingAddress.ZipCode,
		}
		if err := tx.Create(address).Error; err != nil {
			return fmt.Errorf("failed to create shipping address: %w", err)
		}

		if err := s.writeLedger(tx, items, models.StockOpOut, "order", order.OrderNo, userID); err != nil {
			return err
		}

		log := &models.OrderStatusLog{
			OrderID:    order.ID,
			Status:     models.OrderStatusPending,
			OperatorID: userID,
			Remark:     req.Remark,
		}
		if err := tx.Create(log).Error; err != nil {
			return fmt.Errorf("failed to create status log: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if s.inventoryService != nil {
		for _, line := range req.Items {
			s.inventoryService.EvaluateAlerts(line.ProductID)
		}
	}

	s.db.Preload("Items").Preload("ShippingAddress").Preload("StatusLogs").
		First(order, "id = ?", order.ID)

	return order, nil
}

// consumeCoupon marks the user's claimed coupon as spent and returns the
// discounted total. Single-use coupons are guarded by used_at in the update,
// so double spending fails the whole transaction; multi-use coupons only
// refresh used_at. used_count counts spends, independent of the claim quota.
func (s *OrderService) consumeCoupon(tx *gorm.DB, userID, couponID uuid.UUID, total float64) (float64, error) {
	var userCoupon models.UserCoupon
	if err := tx.Preload("Coupon").
		First(&userCoupon, "user_id = ? AND coupon_id = ?", userID, couponID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCouponNotFound
		}
		return 0, fmt.Errorf("database error: %w", err)
	}

	coupon := userCoupon.Coupon
	if !coupon.Active(time.Now()) {
		return 0, ErrCouponNotUsable
	}
	if total < coupon.MinPurchase {
		return 0, ErrCouponNotUsable
	}

	spend := tx.Model(&models.UserCoupon{}).Where("id = ?", userCoupon.ID)
	if !coupon.AllowMultipleUse {
		spend = spend.Where("used_at IS NULL")
	}
	res := spend.UpdateColumn("used_at", time.Now())
	if res.Error != nil {
		return 0, fmt.Errorf("failed to consume coupon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrCouponNotUsable
	}

	if err := tx.Model(&models.Coupon{}).
		Where("id = ?", coupon.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		return 0, fmt.Errorf("failed to update coupon usage: %w", err)
	}

	return CouponDiscountedTotal(&coupon, total), nil
}

// writeLedger appends one inventory record per order line, snapshotting the
// post-change stock counter.
func (s *OrderService) writeLedger(tx *gorm.DB, items []models.OrderItem, opType models.StockOpType, reason, orderNo string, operatorID uuid.UUID) error {
	for _, item := range items {
		var product models.Product
		if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
			return fmt.Errorf("failed to reload product for ledger: %w", err)
		}

		record := &models.InventoryRecord{
			ProductID:    item.ProductID,
			SKUID:        item.SKUID,
			Type:         opType,
			Quantity:     item.Quantity,
			CurrentStock: product.Stock,
			Reason:       reason,
			Remark:       orderNo,
			OperatorID:   operatorID,
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create inventory record: %w", err)
		}
	}
	return nil
}

// CancelOrder rolls the order into cancelled and restores every reserved line.
// Only pending and paid orders can be cancelled; refunds for paid orders are
// handled by the payment layer.
func (s *OrderService) CancelOrder(orderID, operatorID uuid.UUID, remark string) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !transitionAllowed(order.Status, models.OrderStatusCancelled) {
			return ErrInvalidStateTransition
		}

		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("sales_count", gorm.Expr("sales_count - ?", item.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to restore sales count: %w", err)
			}
			if item.SKUID != nil {
				if err := tx.Model(&models.ProductSKU{}).
					Where("id = ?", *item.SKUID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return fmt.Errorf("failed to restore sku stock: %w", err)
				}
			}
		}

		if err := s.writeLedger(tx, order.Items, models.StockOpIn, "order_cancel", order.OrderNo, operatorID); err != nil {
			return err
		}

		if err := tx.Model(&order).UpdateColumn("status", models.OrderStatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		order.Status = models.OrderStatusCancelled

		log := &models.OrderStatusLog{
			OrderID:    order.ID,
			Status:     models.OrderStatusCancelled,
			OperatorID: operatorID,
			Remark:     remark,
		}
		if err := tx.Create(log).Error; err != nil {
			return fmt.Errorf("failed to create status log: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if s.inventoryService != nil {
		for _, item := range order.Items {
			s.inventoryService.EvaluateAlerts(item.ProductID)
		}
	}

	return &order, nil
}

func (s *OrderService) UpdateOrderStatus(orderID, operatorID uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Cancellation restores stock, so it goes through its own path.
	if req.Status == models.OrderStatusCancelled {
		return s.CancelOrder(orderID, operatorID, req.Remark)
	}

	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.transitionOrder(tx, &order, orderID, operatorID, req.Status, req.Remark)
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (s *OrderService) transitionOrder(tx *gorm.DB, order *models.Order, orderID, operatorID uuid.UUID, next models.OrderStatus, remark string) error {
	if err := tx.First(order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if !transitionAllowed(order.Status, next) {
		return ErrInvalidStateTransition
	}

	if err := tx.Model(order).UpdateColumn("status", next).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = next

	log := &models.OrderStatusLog{
		OrderID:    order.ID,
		Status:     next,
		OperatorID: operatorID,
		Remark:     remark,
	}
	if err := tx.Create(log).Error; err != nil {
		return fmt.Errorf("failed to create status log: %w", err)
	}

	return nil
}

// BatchUpdateOrderStatus applies the same transition to every named order in
// one transaction. One invalid transition rejects the whole batch.
func (s *OrderService) BatchUpdateOrderStatus(operatorID uuid.UUID, req *BatchUpdateOrderStatusRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if req.Status == models.OrderStatusCancelled {
		// Batch cancellation would need per-order stock restoration; keep it
		// a per-order operation.
		return ErrInvalidStateTransition
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, orderID := range req.OrderIDs {
			var order models.Order
			if err := s.transitionOrder(tx, &order, orderID, operatorID, req.Status, req.Remark); err != nil {
				return fmt.Errorf("order %s: %w", orderID, err)
			}
		}
		return nil
	})
}

// MarkPaid transitions a pending order to paid and records the payment
// reference. Called by the payment layer once the charge succeeds.
func (s *OrderService) MarkPaid(orderID uuid.UUID, paymentRef string) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var owner models.Order
		if err := tx.Select("user_id").First(&owner, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		if err := s.transitionOrder(tx, &order, orderID, owner.UserID, models.OrderStatusPaid, "payment confirmed"); err != nil {
			return err
		}
		if paymentRef != "" {
			if err := tx.Model(&order).UpdateColumn("payment_ref", paymentRef).Error; err != nil {
				return fmt.Errorf("failed to record payment reference: %w", err)
			}
			order.PaymentRef = paymentRef
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (s *OrderService) GetOrder(orderID uuid.UUID, userID *uuid.UUID) (*models.Order, error) {
	var order models.Order
	query := s.db.Preload("Items").Preload("Items.Product").
		Preload("ShippingAddress").
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})

	if err := query.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Customers only see their own orders; admins pass nil.
	if userID != nil && order.UserID != *userID {
		return nil, ErrOrderNotFound
	}

	return &order, nil
}

func (s *OrderService) ListOrders(params OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("Items").Preload("ShippingAddress")

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.OrderNo != "" {
		query = query.Where("order_no = ?", params.OrderNo)
	}
	if params.DateFrom != nil {
		query = query.Where("created_at >= ?", *params.DateFrom)
	}
	if params.DateTo != nil {
		query = query.Where("created_at <= ?", *params.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "total_amount", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}
