// internal/services/marketing_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/utils"
)

type MarketingService struct {
	db *gorm.DB
}

type CreateCouponRequest struct {
	Code               string            `json:"code" validate:"required,max=50"`
	Name               string            `json:"name,omitempty"`
	Type               models.CouponType `json:"type" validate:"required,oneof=fixed percentage"`
	Value              float64           `json:"value" validate:"required,gt=0,amount"`
	MinPurchase        float64           `json:"min_purchase" validate:"amount"`
	MaxDiscount        float64           `json:"max_discount" validate:"amount"`
	Quantity           *int              `json:"quantity,omitempty" validate:"omitempty,min=1"`
	StartTime          time.Time         `json:"start_time" validate:"required"`
	EndTime            time.Time         `json:"end_time" validate:"required"`
	AllowMultipleClaim bool              `json:"allow_multiple_claim"`
	AllowMultipleUse   bool              `json:"allow_multiple_use"`
}

type CreatePromotionRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description,omitempty"`
	Discount    float64   `json:"discount" validate:"required,gt=0,amount"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	ProductIDs  []string  `json:"product_ids,omitempty"`
	CategoryIDs []string  `json:"category_ids,omitempty"`
}

type FlashSaleProductRequest struct {
	ProductID  uuid.UUID `json:"product_id" validate:"required"`
	FlashPrice float64   `json:"flash_price" validate:"required,gt=0,amount"`
	Stock      int       `json:"stock" validate:"min=0"`
}

type CreateFlashSaleRequest struct {
	Name      string                    `json:"name" validate:"required,max=100"`
	StartTime time.Time                 `json:"start_time" validate:"required"`
	EndTime   time.Time                 `json:"end_time" validate:"required"`
	Products  []FlashSaleProductRequest `json:"products" validate:"required,min=1,dive"`
}

func NewMarketingService(db *gorm.DB) *MarketingService {
	return &MarketingService{db: db}
}

// CouponDiscountedTotal applies a coupon to an order total. Percentage coupons
// are capped by max_discount when it is set; the result never drops below zero.
func CouponDiscountedTotal(c *models.Coupon, total float64) float64 {
	t := decimal.NewFromFloat(total)

	var discount decimal.Decimal
	switch c.Type {
	case models.CouponTypePercentage:
		discount = t.Mul(decimal.NewFromFloat(c.Value)).Div(decimal.NewFromInt(100))
		if c.MaxDiscount > 0 {
			limit := decimal.NewFromFloat(c.MaxDiscount)
			if discount.GreaterThan(limit) {
				discount = limit
			}
		}
	default:
		discount = decimal.NewFromFloat(c.Value)
	}

	result := t.Sub(discount).Round(2)
	if result.IsNegative() {
		return 0
	}
	f, _ := result.Float64()
	return f
}

// Coupons

func (s *MarketingService) CreateCoupon(req *CreateCouponRequest) (*models.Coupon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrCouponNotUsable)
	}

	coupon := &models.Coupon{
		Code:               req.Code,
		Name:               req.Name,
		Type:               req.Type,
		Value:              req.Value,
		MinPurchase:        req.MinPurchase,
		MaxDiscount:        req.MaxDiscount,
		Quantity:           req.Quantity,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		AllowMultipleClaim: req.AllowMultipleClaim,
		AllowMultipleUse:   req.AllowMultipleUse,
		Status:             models.MarketingStatusActive,
	}
	if err := s.db.Create(coupon).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return coupon, nil
}

func (s *MarketingService) ListCoupons(params utils.PaginationParams) ([]models.Coupon, int64, error) {
	query := s.db.Model(&models.Coupon{})
	if params.Search != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	allowedSortFields := []string{"created_at", "start_time", "end_time", "used_count"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var coupons []models.Coupon
	if err := query.Find(&coupons).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch coupons: %w", err)
	}
	return coupons, total, nil
}

func (s *MarketingService) SetCouponStatus(id uuid.UUID, status models.MarketingStatus) error {
	res := s.db.Model(&models.Coupon{}).Where("id = ?", id).UpdateColumn("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update coupon status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// ClaimCoupon hands a coupon to a user. The quota guard is a conditional
// increment on claimed_count: when quantity is limited, claims past the limit
// update zero rows and the claim fails. used_count tracks spends only.
func (s *MarketingService) ClaimCoupon(userID uuid.UUID, code string) (*models.UserCoupon, error) {
	var claimed *models.UserCoupon

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var coupon models.Coupon
		if err := tx.First(&coupon, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCouponNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		if !coupon.Active(time.Now()) {
			return ErrCouponNotFound
		}

		if !coupon.AllowMultipleClaim {
			var count int64
			if err := tx.Model(&models.UserCoupon{}).
				Where("user_id = ? AND coupon_id = ?", userID, coupon.ID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			if count > 0 {
				return ErrCouponAlreadyClaimed
			}
		}

		if coupon.Quantity != nil {
			// Claims consume quota; spends are counted separately in used_count.
			res := tx.Model(&models.Coupon{}).
				Where("id = ? AND claimed_count < ?", coupon.ID, *coupon.Quantity).
				UpdateColumn("claimed_count", gorm.Expr("claimed_count + 1"))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve coupon: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrCouponExhausted
			}
		}

		claimed = &models.UserCoupon{
			UserID:   userID,
			CouponID: coupon.ID,
		}
		if err := tx.Create(claimed).Error; err != nil {
			return fmt.Errorf("failed to create user coupon: %w", err)
		}
		claimed.Coupon = coupon

		return nil
	})

	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *MarketingService) ListUserCoupons(userID uuid.UUID, unusedOnly bool) ([]models.UserCoupon, error) {
	query := s.db.Preload("Coupon").Where("user_id = ?", userID)
	if unusedOnly {
		query = query.Where("used_at IS NULL")
	}

	var coupons []models.UserCoupon
	if err := query.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch user coupons: %w", err)
	}
	return coupons, nil
}

// ValidateCoupon previews the discounted total without consuming anything.
func (s *MarketingService) ValidateCoupon(userID, couponID uuid.UUID, total float64) (float64, error) {
	var userCoupon models.UserCoupon
	if err := s.db.Preload("Coupon").
		First(&userCoupon, "user_id = ? AND coupon_id = ?", userID, couponID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCouponNotFound
		}
		return 0, fmt.Errorf("database error: %w", err)
	}

	if userCoupon.UsedAt != nil && !userCoupon.Coupon.AllowMultipleUse {
		return 0, ErrCouponNotUsable
	}
	if !userCoupon.Coupon.Active(time.Now()) {
		return 0, ErrCouponNotUsable
	}
	if total < userCoupon.Coupon.MinPurchase {
		return 0, ErrCouponNotUsable
	}

	return CouponDiscountedTotal(&userCoupon.Coupon, total), nil
}

// Promotions

func (s *MarketingService) CreatePromotion(req *CreatePromotionRequest) (*models.Promotion, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	promotion := &models.Promotion{
		Name:        req.Name,
		Description: req.Description,
		Discount:    req.Discount,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      models.MarketingStatusActive,
		ProductIDs:  pq.StringArray(req.ProductIDs),
		CategoryIDs: pq.StringArray(req.CategoryIDs),
	}
	if err := s.db.Create(promotion).Error; err != nil {
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}
	return promotion, nil
}

func (s *MarketingService) ListActivePromotions() ([]models.Promotion, error) {
	now := time.Now()
	var promotions []models.Promotion
	if err := s.db.Where("status = ? AND start_time <= ? AND end_time >= ?",
		models.MarketingStatusActive, now, now).
		Order("start_time DESC").
		Find(&promotions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch promotions: %w", err)
	}
	return promotions, nil
}

func (s *MarketingService) SetPromotionStatus(id uuid.UUID, status models.MarketingStatus) error {
	res := s.db.Model(&models.Promotion{}).Where("id = ?", id).UpdateColumn("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update promotion status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

// Flash sales

func (s *MarketingService) CreateFlashSale(req *CreateFlashSaleRequest) (*models.FlashSale, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	sale := &models.FlashSale{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.MarketingStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("failed to create flash sale: %w", err)
		}
		for _, p := range req.Products {
			item := &models.FlashSaleProduct{
				FlashSaleID: sale.ID,
				ProductID:   p.ProductID,
				FlashPrice:  p.FlashPrice,
				Stock:       p.Stock,
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("failed to create flash sale product: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Products").Preload("Products.Product").First(sale, "id = ?", sale.ID)
	return sale, nil
}

func (s *MarketingService) ListActiveFlashSales() ([]models.FlashSale, error) {
	now := time.Now()
	var sales []models.FlashSale
	if err := s.db.Preload("Products").Preload("Products.Product").
		Where("status = ? AND start_time <= ? AND end_time >= ?",
			models.MarketingStatusActive, now, now).
		Order("end_time ASC").
		Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch flash sales: %w", err)
	}
	return sales, nil
}

// ListUpcomingFlashSales returns active sales whose window has not opened yet.
func (s *MarketingService) ListUpcomingFlashSales() ([]models.FlashSale, error) {
	var sales []models.FlashSale
	if err := s.db.Preload("Products").Preload("Products.Product").
		Where("status = ? AND start_time > ?", models.MarketingStatusActive, time.Now()).
		Order("start_time ASC").
		Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming flash sales: %w", err)
	}
	return sales, nil
}

// GetFlashSale returns one currently running sale with its products.
func (s *MarketingService) GetFlashSale(id uuid.UUID) (*models.FlashSale, error) {
	now := time.Now()
	var sale models.FlashSale
	if err := s.db.Preload("Products").Preload("Products.Product").
		Where("id = ? AND status = ? AND start_time <= ? AND end_time >= ?",
			id, models.MarketingStatusActive, now, now).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlashSaleNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &sale, nil
}

// Points

func (s *MarketingService) ListPointsProducts() ([]models.PointsProduct, error) {
	var products []models.PointsProduct
	if err := s.db.Where("status = ?", models.MarketingStatusActive).
		Order("points_price ASC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch points products: %w", err)
	}
	return products, nil
}

// RedeemPoints spends user points on a points product. Both the user's points
// balance and the product's stock are guarded by conditional updates.
func (s *MarketingService) RedeemPoints(userID, productID uuid.UUID) (*models.PointsRedemption, error) {
	var redemption *models.PointsRedemption

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.PointsProduct
		if err := tx.First(&product, "id = ? AND status = ?", productID, models.MarketingStatusActive).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		res := tx.Model(&models.PointsProduct{}).
			Where("id = ? AND stock >= 1", productID).
			UpdateColumn("stock", gorm.Expr("stock - 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to decrement redemption stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRedemptionOutOfStock
		}

		res = tx.Model(&models.User{}).
			Where("id = ? AND points >= ?", userID, product.PointsPrice).
			UpdateColumn("points", gorm.Expr("points - ?", product.PointsPrice))
		if res.Error != nil {
			return fmt.Errorf("failed to deduct points: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientPoints
		}

		redemption = &models.PointsRedemption{
			UserID:     userID,
			ProductID:  productID,
			PointsCost: product.PointsPrice,
		}
		if err := tx.Create(redemption).Error; err != nil {
			return fmt.Errorf("failed to create redemption: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return redemption, nil
}
