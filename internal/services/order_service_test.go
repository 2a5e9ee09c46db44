// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	service  *OrderService
	customer *models.User
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = openTestDB(suite.T())
	inventoryService := NewInventoryService(suite.db, nil)
	suite.service = NewOrderService(suite.db, inventoryService)
	suite.customer = createTestUser(suite.T(), suite.db, "buyer", 0)
}

func (suite *OrderServiceTestSuite) TestCreateOrderReservesStock() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 19.99, 10)
	pen := createTestProduct(suite.T(), suite.db, "pen", 2.50, 100)

	order, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: mug.ID, Quantity: 2},
			{ProductID: pen.ID, Quantity: 4},
		},
		ShippingAddress: shippingAddress(),
	})
	suite.NoError(err)
	suite.Equal(models.OrderStatusPending, order.Status)
	suite.InDelta(49.98, order.TotalAmount, 0.001)
	suite.Len(order.Items, 2)
	suite.NotNil(order.ShippingAddress)
	suite.NotEmpty(order.OrderNo)

	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, "id = ?", mug.ID).Error)
	suite.Equal(8, reloaded.Stock)
	suite.EqualValues(2, reloaded.SalesCount)

	// One ledger row per line, snapshotting the post-reservation stock.
	var records []models.InventoryRecord
	suite.NoError(suite.db.Where("reason = ?", "order").Order("created_at ASC").Find(&records).Error)
	suite.Len(records, 2)
	suite.Equal(models.StockOpOut, records[0].Type)
	suite.Equal(order.OrderNo, records[0].Remark)

	suite.Len(order.StatusLogs, 1)
	suite.Equal(models.OrderStatusPending, order.StatusLogs[0].Status)
}

func (suite *OrderServiceTestSuite) TestCreateOrderRollsBackOnInsufficientLine() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 19.99, 10)
	pen := createTestProduct(suite.T(), suite.db, "pen", 2.50, 1)

	_, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: mug.ID, Quantity: 2},
			{ProductID: pen.ID, Quantity: 5},
		},
		ShippingAddress: shippingAddress(),
	})
	suite.ErrorIs(err, ErrInsufficientStock)

	// The first line's reservation must be rolled back with the rest.
	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, "id = ?", mug.ID).Error)
	suite.Equal(10, reloaded.Stock)
	suite.EqualValues(0, reloaded.SalesCount)

	var orderCount int64
	suite.NoError(suite.db.Model(&models.Order{}).Count(&orderCount).Error)
	suite.EqualValues(0, orderCount)

	var ledgerCount int64
	suite.NoError(suite.db.Model(&models.InventoryRecord{}).Count(&ledgerCount).Error)
	suite.EqualValues(0, ledgerCount)
}

func (suite *OrderServiceTestSuite) TestCreateOrderRejectsOffSaleProduct() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 19.99, 10)
	suite.NoError(suite.db.Model(mug).UpdateColumn("status", models.ProductStatusOffSale).Error)

	_, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
	})
	suite.ErrorIs(err, ErrProductNotFound)
}

func (suite *OrderServiceTestSuite) TestCreateOrderRejectsBadInput() {
	_, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           nil,
		ShippingAddress: shippingAddress(),
	})
	suite.Error(err)

	mug := createTestProduct(suite.T(), suite.db, "mug", 19.99, 10)
	_, err = suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
	})
	suite.Error(err)
}

func (suite *OrderServiceTestSuite) TestCreateOrderConsumesCoupon() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 50.00, 10)
	coupon := createTestCoupon(suite.T(), suite.db, "SAVE10", nil)

	marketing := NewMarketingService(suite.db)
	_, err := marketing.ClaimCoupon(suite.customer.ID, coupon.Code)
	suite.NoError(err)

	order, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
		CouponID:        &coupon.ID,
	})
	suite.NoError(err)
	suite.InDelta(40.00, order.TotalAmount, 0.001)

	var userCoupon models.UserCoupon
	suite.NoError(suite.db.First(&userCoupon, "user_id = ? AND coupon_id = ?", suite.customer.ID, coupon.ID).Error)
	suite.NotNil(userCoupon.UsedAt)

	// Spending the same claim again fails the whole order.
	_, err = suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
		CouponID:        &coupon.ID,
	})
	suite.ErrorIs(err, ErrCouponNotUsable)

	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, "id = ?", mug.ID).Error)
	suite.Equal(9, reloaded.Stock)
}

func (suite *OrderServiceTestSuite) TestSpentCouponLeavesClaimQuotaIntact() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 50.00, 10)
	quantity := 2
	coupon := createTestCoupon(suite.T(), suite.db, "TWOONLY", func(c *models.Coupon) {
		c.Quantity = &quantity
	})

	marketing := NewMarketingService(suite.db)
	_, err := marketing.ClaimCoupon(suite.customer.ID, coupon.Code)
	suite.NoError(err)

	_, err = suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
		CouponID:        &coupon.ID,
	})
	suite.NoError(err)

	// A spent claim still counts as one claim, so the second slot stays open.
	other := createTestUser(suite.T(), suite.db, "other-buyer", 0)
	_, err = marketing.ClaimCoupon(other.ID, coupon.Code)
	suite.NoError(err)

	var reloaded models.Coupon
	suite.NoError(suite.db.First(&reloaded, "id = ?", coupon.ID).Error)
	suite.Equal(2, reloaded.ClaimedCount)
	suite.Equal(1, reloaded.UsedCount)
}

func (suite *OrderServiceTestSuite) TestMultiUseCouponSpansOrders() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 50.00, 10)
	coupon := createTestCoupon(suite.T(), suite.db, "EVERGREEN", func(c *models.Coupon) {
		c.AllowMultipleUse = true
	})

	marketing := NewMarketingService(suite.db)
	_, err := marketing.ClaimCoupon(suite.customer.ID, coupon.Code)
	suite.NoError(err)

	for i := 0; i < 2; i++ {
		order, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
			Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
			ShippingAddress: shippingAddress(),
			CouponID:        &coupon.ID,
		})
		suite.NoError(err)
		suite.InDelta(40.00, order.TotalAmount, 0.001)
	}

	var reloaded models.Coupon
	suite.NoError(suite.db.First(&reloaded, "id = ?", coupon.ID).Error)
	suite.Equal(2, reloaded.UsedCount)
}

func (suite *OrderServiceTestSuite) TestCreateOrderRejectsCouponUnderMinPurchase() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 10.00, 10)
	coupon := createTestCoupon(suite.T(), suite.db, "BIGSPEND", func(c *models.Coupon) {
		c.MinPurchase = 100
	})

	marketing := NewMarketingService(suite.db)
	_, err := marketing.ClaimCoupon(suite.customer.ID, coupon.Code)
	suite.NoError(err)

	_, err = suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
		CouponID:        &coupon.ID,
	})
	suite.ErrorIs(err, ErrCouponNotUsable)
}

func (suite *OrderServiceTestSuite) TestCancelRestoresStock() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 19.99, 10)

	order, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 3}},
		ShippingAddress: shippingAddress(),
	})
	suite.NoError(err)

	cancelled, err := suite.service.CancelOrder(order.ID, suite.customer.ID, "changed my mind")
	suite.NoError(err)
	suite.Equal(models.OrderStatusCancelled, cancelled.Status)

	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, "id = ?", mug.ID).Error)
	suite.Equal(10, reloaded.Stock)
	suite.EqualValues(0, reloaded.SalesCount)

	var restock models.InventoryRecord
	suite.NoError(suite.db.First(&restock, "reason = ?", "order_cancel").Error)
	suite.Equal(models.StockOpIn, restock.Type)
	suite.Equal(10, restock.CurrentStock)

	var logs []models.OrderStatusLog
	suite.NoError(suite.db.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&logs).Error)
	suite.Equal(models.OrderStatusCancelled, logs[len(logs)-1].Status)
}

func (suite *OrderServiceTestSuite) TestStatusMachine() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 19.99, 10)

	order, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
	})
	suite.NoError(err)

	// pending cannot jump straight to shipped.
	_, err = suite.service.UpdateOrderStatus(order.ID, suite.customer.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatusShipped,
	})
	suite.ErrorIs(err, ErrInvalidStateTransition)

	paid, err := suite.service.MarkPaid(order.ID, "pi_test_123")
	suite.NoError(err)
	suite.Equal(models.OrderStatusPaid, paid.Status)
	suite.Equal("pi_test_123", paid.PaymentRef)

	_, err = suite.service.MarkPaid(order.ID, "pi_test_456")
	suite.ErrorIs(err, ErrInvalidStateTransition)

	shipped, err := suite.service.UpdateOrderStatus(order.ID, suite.customer.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatusShipped,
	})
	suite.NoError(err)
	suite.Equal(models.OrderStatusShipped, shipped.Status)

	completed, err := suite.service.UpdateOrderStatus(order.ID, suite.customer.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatusCompleted,
	})
	suite.NoError(err)
	suite.Equal(models.OrderStatusCompleted, completed.Status)

	// Completed is terminal.
	_, err = suite.service.CancelOrder(order.ID, suite.customer.ID, "too late")
	suite.ErrorIs(err, ErrInvalidStateTransition)
}

func (suite *OrderServiceTestSuite) TestBatchUpdateAllOrNothing() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 19.99, 10)

	first, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
	})
	suite.NoError(err)
	second, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
	})
	suite.NoError(err)

	_, err = suite.service.MarkPaid(first.ID, "")
	suite.NoError(err)

	// first is already paid, so the whole batch must fail and leave second
	// untouched.
	err = suite.service.BatchUpdateOrderStatus(suite.customer.ID, &BatchUpdateOrderStatusRequest{
		OrderIDs: []uuid.UUID{first.ID, second.ID},
		Status:   models.OrderStatusPaid,
	})
	suite.ErrorIs(err, ErrInvalidStateTransition)

	var reloaded models.Order
	suite.NoError(suite.db.First(&reloaded, "id = ?", second.ID).Error)
	suite.Equal(models.OrderStatusPending, reloaded.Status)

	// A clean batch goes through.
	err = suite.service.BatchUpdateOrderStatus(suite.customer.ID, &BatchUpdateOrderStatusRequest{
		OrderIDs: []uuid.UUID{second.ID},
		Status:   models.OrderStatusPaid,
	})
	suite.NoError(err)
}

func (suite *OrderServiceTestSuite) TestBatchUpdateRejectsCancellation() {
	err := suite.service.BatchUpdateOrderStatus(suite.customer.ID, &BatchUpdateOrderStatusRequest{
		OrderIDs: []uuid.UUID{uuid.New()},
		Status:   models.OrderStatusCancelled,
	})
	suite.ErrorIs(err, ErrInvalidStateTransition)
}

func (suite *OrderServiceTestSuite) TestGetOrderScopedToOwner() {
	mug := createTestProduct(suite.T(), suite.db, "mug", 19.99, 10)
	stranger := createTestUser(suite.T(), suite.db, "stranger", 0)

	order, err := suite.service.CreateOrder(suite.customer.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		ShippingAddress: shippingAddress(),
	})
	suite.NoError(err)

	_, err = suite.service.GetOrder(order.ID, &stranger.ID)
	suite.ErrorIs(err, ErrOrderNotFound)

	got, err := suite.service.GetOrder(order.ID, &suite.customer.ID)
	suite.NoError(err)
	suite.Equal(order.ID, got.ID)

	// Admins pass nil and see everything.
	got, err = suite.service.GetOrder(order.ID, nil)
	suite.NoError(err)
	suite.Equal(order.ID, got.ID)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
