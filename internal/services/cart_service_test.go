// internal/services/cart_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimall/backend/internal/models"
)

func TestAddItemMergesLines(t *testing.T) {
	db := openTestDB(t)
	service := NewCartService(db)

	user := createTestUser(t, db, "shopper", 0)
	mug := createTestProduct(t, db, "mug", 19.99, 10)

	_, err := service.AddItem(user.ID, &AddCartItemRequest{ProductID: mug.ID, Quantity: 2})
	require.NoError(t, err)

	item, err := service.AddItem(user.ID, &AddCartItemRequest{ProductID: mug.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddItemRejectsUnknownProduct(t *testing.T) {
	db := openTestDB(t)
	service := NewCartService(db)
	user := createTestUser(t, db, "shopper", 0)

	mug := createTestProduct(t, db, "mug", 19.99, 10)
	require.NoError(t, db.Model(mug).UpdateColumn("status", models.ProductStatusOffSale).Error)

	_, err := service.AddItem(user.ID, &AddCartItemRequest{ProductID: mug.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartSummaryTotals(t *testing.T) {
	db := openTestDB(t)
	service := NewCartService(db)

	user := createTestUser(t, db, "shopper", 0)
	mug := createTestProduct(t, db, "mug", 19.99, 10)
	pen := createTestProduct(t, db, "pen", 2.50, 100)

	_, err := service.AddItem(user.ID, &AddCartItemRequest{ProductID: mug.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = service.AddItem(user.ID, &AddCartItemRequest{ProductID: pen.ID, Quantity: 4})
	require.NoError(t, err)

	summary, err := service.GetCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 2)
	assert.Equal(t, 6, summary.ItemCount)
	assert.InDelta(t, 49.98, summary.TotalAmount, 0.001)
}

func TestCartSummaryUsesSKUPrice(t *testing.T) {
	db := openTestDB(t)
	service := NewCartService(db)

	user := createTestUser(t, db, "shopper", 0)
	mug := createTestProduct(t, db, "mug", 19.99, 10)

	sku := &models.ProductSKU{
		ProductID: mug.ID,
		Code:      "SKU-mug-large",
		Price:     24.99,
		Stock:     5,
	}
	require.NoError(t, db.Create(sku).Error)

	_, err := service.AddItem(user.ID, &AddCartItemRequest{
		ProductID: mug.ID,
		SKUID:     &sku.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	summary, err := service.GetCart(user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 49.98, summary.TotalAmount, 0.001)
}

func TestCartItemOwnership(t *testing.T) {
	db := openTestDB(t)
	service := NewCartService(db)

	owner := createTestUser(t, db, "owner", 0)
	other := createTestUser(t, db, "other", 0)
	mug := createTestProduct(t, db, "mug", 19.99, 10)

	item, err := service.AddItem(owner.ID, &AddCartItemRequest{ProductID: mug.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = service.UpdateItem(other.ID, item.ID, &UpdateCartItemRequest{Quantity: 5})
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	assert.ErrorIs(t, service.RemoveItem(other.ID, item.ID), ErrCartItemNotFound)
	assert.NoError(t, service.RemoveItem(owner.ID, item.ID))
}

func TestClearCart(t *testing.T) {
	db := openTestDB(t)
	service := NewCartService(db)

	user := createTestUser(t, db, "shopper", 0)
	mug := createTestProduct(t, db, "mug", 19.99, 10)

	_, err := service.AddItem(user.ID, &AddCartItemRequest{ProductID: mug.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, service.ClearCart(user.ID))

	summary, err := service.GetCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.TotalAmount)
}
