// internal/services/testutil_test.go
package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/minimall/backend/internal/config"
	"github.com/minimall/backend/internal/models"
)

// openTestDB spins up an isolated in-memory database per test. Promotion is
// left out of the migration because its text[] columns are postgres only.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.AdminNotification{},
		&models.AuditLog{},
		&models.Category{},
		&models.Attribute{},
		&models.AttributeValue{},
		&models.Tag{},
		&models.Product{},
		&models.ProductSKU{},
		&models.ProductImage{},
		&models.ProductSpec{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.ShippingAddress{},
		&models.OrderStatusLog{},
		&models.InventoryRecord{},
		&models.InventoryAlert{},
		&models.Coupon{},
		&models.UserCoupon{},
		&models.FlashSale{},
		&models.FlashSaleProduct{},
		&models.PointsProduct{},
		&models.PointsRedemption{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username string, points int) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.UserRoleCustomer,
		Status:   models.UserStatusActive,
		Points:   points,
	}
	require.NoError(t, user.SetPassword("Sup3rSecret!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:   name,
		Level:  1,
		Status: models.CategoryStatusActive,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()

	category := createTestCategory(t, db, "category-for-"+name)
	product := &models.Product{
		CategoryID: category.ID,
		Name:       name,
		SKUCode:    "SKU-" + name,
		Price:      price,
		Stock:      stock,
		Status:     models.ProductStatusOnSale,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createTestCoupon(t *testing.T, db *gorm.DB, code string, mutate func(*models.Coupon)) *models.Coupon {
	t.Helper()

	now := time.Now()
	coupon := &models.Coupon{
		Code:      code,
		Name:      code,
		Type:      models.CouponTypeFixed,
		Value:     10,
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
		Status:    models.MarketingStatusActive,
	}
	if mutate != nil {
		mutate(coupon)
	}
	require.NoError(t, db.Create(coupon).Error)
	return coupon
}

func shippingAddress() *ShippingAddressRequest {
	return &ShippingAddressRequest{
		ReceiverName: "Pat Doe",
		Phone:        "555-0100",
		Address:      "1 Main St",
	}
}
