// internal/models/marketing.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Coupon struct {
	BaseModel
	Code               string          `json:"code" gorm:"uniqueIndex;size:50;not null"`
	Name               string          `json:"name" gorm:"size:100"`
	Type               CouponType      `json:"type" gorm:"type:varchar(20);not null"`
	Value              float64         `json:"value" gorm:"type:decimal(10,2);not null"`
	MinPurchase        float64         `json:"min_purchase" gorm:"type:decimal(10,2);default:0"`
	MaxDiscount        float64         `json:"max_discount" gorm:"type:decimal(10,2);default:0"`
	Quantity           *int            `json:"quantity"` // nil means unlimited
	ClaimedCount       int             `json:"claimed_count" gorm:"default:0"`
	UsedCount          int             `json:"used_count" gorm:"default:0"`
	StartTime          time.Time       `json:"start_time"`
	EndTime            time.Time       `json:"end_time"`
	AllowMultipleClaim bool            `json:"allow_multiple_claim" gorm:"default:false"`
	AllowMultipleUse   bool            `json:"allow_multiple_use" gorm:"default:false"`
	Status             MarketingStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
}

// Active reports whether the coupon can be claimed or spent at the given time.
func (c *Coupon) Active(now time.Time) bool {
	return c.Status == MarketingStatusActive && !now.Before(c.StartTime) && !now.After(c.EndTime)
}

// UserCoupon links a user to a claimed coupon; UsedAt marks consumption.
type UserCoupon struct {
	BaseModel
	UserID   uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index:idx_user_coupons_user_coupon"`
	CouponID uuid.UUID  `json:"coupon_id" gorm:"type:uuid;not null;index:idx_user_coupons_user_coupon"`
	UsedAt   *time.Time `json:"used_at"`

	Coupon Coupon `json:"coupon,omitempty" gorm:"foreignKey:CouponID"`
}

type Promotion struct {
	BaseModel
	Name        string          `json:"name" gorm:"size:100;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Discount    float64         `json:"discount" gorm:"type:decimal(10,2)"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Status      MarketingStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	ProductIDs  pq.StringArray  `json:"product_ids" gorm:"type:text[]"`
	CategoryIDs pq.StringArray  `json:"category_ids" gorm:"type:text[]"`
}

type FlashSale struct {
	BaseModel
	Name      string          `json:"name" gorm:"size:100;not null"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Status    MarketingStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`

	Products []FlashSaleProduct `json:"products,omitempty" gorm:"foreignKey:FlashSaleID"`
}

type FlashSaleProduct struct {
	BaseModel
	FlashSaleID uuid.UUID `json:"flash_sale_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	FlashPrice  float64   `json:"flash_price" gorm:"type:decimal(10,2);not null"`
	Stock       int       `json:"stock" gorm:"default:0"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type PointsProduct struct {
	BaseModel
	Name        string          `json:"name" gorm:"size:100;not null"`
	Description string          `json:"description" gorm:"type:text"`
	PointsPrice int             `json:"points_price" gorm:"not null"`
	Stock       int             `json:"stock" gorm:"default:0"`
	Status      MarketingStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
}

type PointsRedemption struct {
	BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	PointsCost int       `json:"points_cost" gorm:"not null"`

	Product PointsProduct `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
