// internal/services/marketing_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimall/backend/internal/models"
)

func TestCouponDiscountedTotal(t *testing.T) {
	tests := []struct {
		name   string
		coupon models.Coupon
		total  float64
		want   float64
	}{
		{
			name:   "fixed discount",
			coupon: models.Coupon{Type: models.CouponTypeFixed, Value: 10},
			total:  100,
			want:   90,
		},
		{
			name:   "percentage discount",
			coupon: models.Coupon{Type: models.CouponTypePercentage, Value: 10},
			total:  200,
			want:   180,
		},
		{
			name:   "percentage capped by max discount",
			coupon: models.Coupon{Type: models.CouponTypePercentage, Value: 10, MaxDiscount: 15},
			total:  200,
			want:   185,
		},
		{
			name:   "fixed discount floors at zero",
			coupon: models.Coupon{Type: models.CouponTypeFixed, Value: 50},
			total:  30,
			want:   0,
		},
		{
			name:   "percentage rounds to cents",
			coupon: models.Coupon{Type: models.CouponTypePercentage, Value: 15},
			total:  19.99,
			want:   16.99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CouponDiscountedTotal(&tt.coupon, tt.total), 0.001)
		})
	}
}

func TestClaimCouponQuota(t *testing.T) {
	db := openTestDB(t)
	service := NewMarketingService(db)

	quantity := 2
	coupon := createTestCoupon(t, db, "LIMITED", func(c *models.Coupon) {
		c.Quantity = &quantity
	})

	first := createTestUser(t, db, "first", 0)
	second := createTestUser(t, db, "second", 0)
	third := createTestUser(t, db, "third", 0)

	_, err := service.ClaimCoupon(first.ID, coupon.Code)
	require.NoError(t, err)
	_, err = service.ClaimCoupon(second.ID, coupon.Code)
	require.NoError(t, err)

	_, err = service.ClaimCoupon(third.ID, coupon.Code)
	assert.ErrorIs(t, err, ErrCouponExhausted)

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, "id = ?", coupon.ID).Error)
	assert.Equal(t, 2, reloaded.ClaimedCount)
	assert.Equal(t, 0, reloaded.UsedCount)

	// The failed claim must not leave a user coupon behind.
	var count int64
	require.NoError(t, db.Model(&models.UserCoupon{}).
		Where("user_id = ?", third.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestClaimCouponOncePerUser(t *testing.T) {
	db := openTestDB(t)
	service := NewMarketingService(db)

	coupon := createTestCoupon(t, db, "ONCE", nil)
	user := createTestUser(t, db, "claimer", 0)

	_, err := service.ClaimCoupon(user.ID, coupon.Code)
	require.NoError(t, err)

	_, err = service.ClaimCoupon(user.ID, coupon.Code)
	assert.ErrorIs(t, err, ErrCouponAlreadyClaimed)
}

func TestClaimCouponMultipleClaimAllowed(t *testing.T) {
	db := openTestDB(t)
	service := NewMarketingService(db)

	coupon := createTestCoupon(t, db, "REPEAT", func(c *models.Coupon) {
		c.AllowMultipleClaim = true
	})
	user := createTestUser(t, db, "claimer", 0)

	_, err := service.ClaimCoupon(user.ID, coupon.Code)
	require.NoError(t, err)
	_, err = service.ClaimCoupon(user.ID, coupon.Code)
	require.NoError(t, err)

	coupons, err := service.ListUserCoupons(user.ID, false)
	require.NoError(t, err)
	assert.Len(t, coupons, 2)
}

func TestClaimCouponOutsideWindow(t *testing.T) {
	db := openTestDB(t)
	service := NewMarketingService(db)

	coupon := createTestCoupon(t, db, "EXPIRED", func(c *models.Coupon) {
		c.StartTime = time.Now().Add(-48 * time.Hour)
		c.EndTime = time.Now().Add(-24 * time.Hour)
	})
	user := createTestUser(t, db, "latecomer", 0)

	_, err := service.ClaimCoupon(user.ID, coupon.Code)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestValidateCouponPreviewDoesNotConsume(t *testing.T) {
	db := openTestDB(t)
	service := NewMarketingService(db)

	coupon := createTestCoupon(t, db, "PREVIEW", func(c *models.Coupon) {
		c.MinPurchase = 50
	})
	user := createTestUser(t, db, "shopper", 0)

	_, err := service.ClaimCoupon(user.ID, coupon.Code)
	require.NoError(t, err)

	_, err = service.ValidateCoupon(user.ID, coupon.ID, 30)
	assert.ErrorIs(t, err, ErrCouponNotUsable)

	discounted, err := service.ValidateCoupon(user.ID, coupon.ID, 100)
	require.NoError(t, err)
	assert.InDelta(t, 90, discounted, 0.001)

	var userCoupon models.UserCoupon
	require.NoError(t, db.First(&userCoupon, "user_id = ?", user.ID).Error)
	assert.Nil(t, userCoupon.UsedAt)
}

func TestRedeemPointsGuards(t *testing.T) {
	db := openTestDB(t)
	service := NewMarketingService(db)

	user := createTestUser(t, db, "collector", 100)

	scarce := &models.PointsProduct{
		Name:        "tote bag",
		PointsPrice: 60,
		Stock:       1,
		Status:      models.MarketingStatusActive,
	}
	require.NoError(t, db.Create(scarce).Error)

	redemption, err := service.RedeemPoints(user.ID, scarce.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, redemption.PointsCost)

	var reloadedUser models.User
	require.NoError(t, db.First(&reloadedUser, "id = ?", user.ID).Error)
	assert.Equal(t, 40, reloadedUser.Points)

	// Stock is gone.
	_, err = service.RedeemPoints(user.ID, scarce.ID)
	assert.ErrorIs(t, err, ErrRedemptionOutOfStock)

	// Points are gone too: 40 left against a 60 point price.
	plenty := &models.PointsProduct{
		Name:        "sticker pack",
		PointsPrice: 60,
		Stock:       5,
		Status:      models.MarketingStatusActive,
	}
	require.NoError(t, db.Create(plenty).Error)

	_, err = service.RedeemPoints(user.ID, plenty.ID)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	// Failed redemptions must restore the reserved stock.
	var reloadedProduct models.PointsProduct
	require.NoError(t, db.First(&reloadedProduct, "id = ?", plenty.ID).Error)
	assert.Equal(t, 5, reloadedProduct.Stock)
}

func TestFlashSaleListing(t *testing.T) {
	db := openTestDB(t)
	service := NewMarketingService(db)

	product := createTestProduct(t, db, "flash-widget", 99.99, 10)

	now := time.Now()
	_, err := service.CreateFlashSale(&CreateFlashSaleRequest{
		Name:      "midnight madness",
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
		Products: []FlashSaleProductRequest{
			{ProductID: product.ID, FlashPrice: 49.99, Stock: 5},
		},
	})
	require.NoError(t, err)

	_, err = service.CreateFlashSale(&CreateFlashSaleRequest{
		Name:      "next week",
		StartTime: now.Add(72 * time.Hour),
		EndTime:   now.Add(96 * time.Hour),
		Products: []FlashSaleProductRequest{
			{ProductID: product.ID, FlashPrice: 59.99, Stock: 5},
		},
	})
	require.NoError(t, err)

	active, err := service.ListActiveFlashSales()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "midnight madness", active[0].Name)
	require.Len(t, active[0].Products, 1)
	assert.InDelta(t, 49.99, active[0].Products[0].FlashPrice, 0.001)

	upcoming, err := service.ListUpcomingFlashSales()
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "next week", upcoming[0].Name)

	// Detail is only served while the sale is running.
	detail, err := service.GetFlashSale(active[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "midnight madness", detail.Name)
	require.Len(t, detail.Products, 1)
	assert.InDelta(t, 49.99, detail.Products[0].FlashPrice, 0.001)

	_, err = service.GetFlashSale(upcoming[0].ID)
	assert.ErrorIs(t, err, ErrFlashSaleNotFound)
}
