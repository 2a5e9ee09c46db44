// internal/services/inventory_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/models"
)

type InventoryServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	service  *InventoryService
	operator *models.User
}

func (suite *InventoryServiceTestSuite) SetupTest() {
	suite.db = openTestDB(suite.T())
	notificationService := NewNotificationService(suite.db, testConfig())
	suite.service = NewInventoryService(suite.db, notificationService)
	suite.operator = createTestUser(suite.T(), suite.db, "stockkeeper", 0)
}

func (suite *InventoryServiceTestSuite) TestOutboundDecrementsAndWritesLedger() {
	product := createTestProduct(suite.T(), suite.db, "widget", 19.99, 5)

	record, err := suite.service.AdjustStock(suite.operator.ID, &AdjustStockRequest{
		ProductID: product.ID,
		Type:      models.StockOpOut,
		Quantity:  3,
		Reason:    "damage",
	})
	suite.NoError(err)
	suite.Equal(2, record.CurrentStock)

	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, "id = ?", product.ID).Error)
	suite.Equal(2, reloaded.Stock)
}

func (suite *InventoryServiceTestSuite) TestOutboundRejectsOversell() {
	product := createTestProduct(suite.T(), suite.db, "widget", 19.99, 5)

	_, err := suite.service.AdjustStock(suite.operator.ID, &AdjustStockRequest{
		ProductID: product.ID,
		Type:      models.StockOpOut,
		Quantity:  3,
		Reason:    "damage",
	})
	suite.NoError(err)

	_, err = suite.service.AdjustStock(suite.operator.ID, &AdjustStockRequest{
		ProductID: product.ID,
		Type:      models.StockOpOut,
		Quantity:  3,
		Reason:    "damage",
	})
	suite.ErrorIs(err, ErrInsufficientStock)

	// The failed adjustment must not touch stock or the ledger.
	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, "id = ?", product.ID).Error)
	suite.Equal(2, reloaded.Stock)

	var ledgerCount int64
	suite.NoError(suite.db.Model(&models.InventoryRecord{}).
		Where("product_id = ?", product.ID).Count(&ledgerCount).Error)
	suite.EqualValues(1, ledgerCount)
}

func (suite *InventoryServiceTestSuite) TestInboundIncrementsStock() {
	product := createTestProduct(suite.T(), suite.db, "widget", 19.99, 5)

	record, err := suite.service.AdjustStock(suite.operator.ID, &AdjustStockRequest{
		ProductID: product.ID,
		Type:      models.StockOpIn,
		Quantity:  7,
		Reason:    "restock",
	})
	suite.NoError(err)
	suite.Equal(12, record.CurrentStock)
}

func (suite *InventoryServiceTestSuite) TestLedgerSnapshotsFollowStock() {
	product := createTestProduct(suite.T(), suite.db, "widget", 19.99, 10)

	moves := []struct {
		op       models.StockOpType
		quantity int
		expected int
	}{
		{models.StockOpOut, 4, 6},
		{models.StockOpIn, 10, 16},
		{models.StockOpOut, 16, 0},
	}
	for _, move := range moves {
		record, err := suite.service.AdjustStock(suite.operator.ID, &AdjustStockRequest{
			ProductID: product.ID,
			Type:      move.op,
			Quantity:  move.quantity,
			Reason:    "test",
		})
		suite.NoError(err)
		suite.Equal(move.expected, record.CurrentStock)
	}
}

func (suite *InventoryServiceTestSuite) TestAlertTransitions() {
	product := createTestProduct(suite.T(), suite.db, "widget", 19.99, 10)

	rule, err := suite.service.CreateAlertRule(&AlertRuleRequest{
		ProductID: product.ID,
		MinStock:  3,
		MaxStock:  20,
	})
	suite.NoError(err)
	suite.Equal(models.AlertTypeNone, rule.AlertType)

	// Drop to 2: at or below min flips the rule to low and notifies.
	_, err = suite.service.AdjustStock(suite.operator.ID, &AdjustStockRequest{
		ProductID: product.ID,
		Type:      models.StockOpOut,
		Quantity:  8,
		Reason:    "sale",
	})
	suite.NoError(err)
	suite.Equal(models.AlertTypeLow, suite.reloadRule(rule.ID).AlertType)

	var notificationCount int64
	suite.NoError(suite.db.Model(&models.AdminNotification{}).
		Where("type = ?", "stock_alert").Count(&notificationCount).Error)
	suite.EqualValues(1, notificationCount)

	// Climb to 27: at or above max flips the rule to high.
	_, err = suite.service.AdjustStock(suite.operator.ID, &AdjustStockRequest{
		ProductID: product.ID,
		Type:      models.StockOpIn,
		Quantity:  25,
		Reason:    "restock",
	})
	suite.NoError(err)
	suite.Equal(models.AlertTypeHigh, suite.reloadRule(rule.ID).AlertType)

	// Back inside the band resets to none without notifying.
	_, err = suite.service.AdjustStock(suite.operator.ID, &AdjustStockRequest{
		ProductID: product.ID,
		Type:      models.StockOpOut,
		Quantity:  20,
		Reason:    "sale",
	})
	suite.NoError(err)
	suite.Equal(models.AlertTypeNone, suite.reloadRule(rule.ID).AlertType)

	suite.NoError(suite.db.Model(&models.AdminNotification{}).
		Where("type = ?", "stock_alert").Count(&notificationCount).Error)
	suite.EqualValues(2, notificationCount)
}

func (suite *InventoryServiceTestSuite) TestInactiveRulesAreIgnored() {
	product := createTestProduct(suite.T(), suite.db, "widget", 19.99, 10)

	rule, err := suite.service.CreateAlertRule(&AlertRuleRequest{
		ProductID: product.ID,
		MinStock:  3,
		MaxStock:  20,
	})
	suite.NoError(err)
	suite.NoError(suite.service.SetAlertRuleStatus(rule.ID, models.AlertStatusInactive))

	_, err = suite.service.AdjustStock(suite.operator.ID, &AdjustStockRequest{
		ProductID: product.ID,
		Type:      models.StockOpOut,
		Quantity:  9,
		Reason:    "sale",
	})
	suite.NoError(err)
	suite.Equal(models.AlertTypeNone, suite.reloadRule(rule.ID).AlertType)
}

func (suite *InventoryServiceTestSuite) TestCreateAlertRuleRejectsBadRange() {
	product := createTestProduct(suite.T(), suite.db, "widget", 19.99, 10)

	_, err := suite.service.CreateAlertRule(&AlertRuleRequest{
		ProductID: product.ID,
		MinStock:  20,
		MaxStock:  20,
	})
	suite.ErrorIs(err, ErrInvalidAlertRange)
}

func (suite *InventoryServiceTestSuite) TestCreateAlertRuleRejectsDuplicate() {
	product := createTestProduct(suite.T(), suite.db, "widget", 19.99, 10)

	_, err := suite.service.CreateAlertRule(&AlertRuleRequest{
		ProductID: product.ID,
		MinStock:  3,
		MaxStock:  20,
	})
	suite.NoError(err)

	_, err = suite.service.CreateAlertRule(&AlertRuleRequest{
		ProductID: product.ID,
		MinStock:  5,
		MaxStock:  30,
	})
	suite.ErrorIs(err, ErrAlertRuleExists)
}

func (suite *InventoryServiceTestSuite) TestTriggeredAlertsListing() {
	low := createTestProduct(suite.T(), suite.db, "low-widget", 9.99, 2)
	ok := createTestProduct(suite.T(), suite.db, "ok-widget", 9.99, 10)

	_, err := suite.service.CreateAlertRule(&AlertRuleRequest{ProductID: low.ID, MinStock: 3, MaxStock: 50})
	suite.NoError(err)
	_, err = suite.service.CreateAlertRule(&AlertRuleRequest{ProductID: ok.ID, MinStock: 3, MaxStock: 50})
	suite.NoError(err)

	triggered, err := suite.service.ListTriggeredAlerts()
	suite.NoError(err)
	suite.Len(triggered, 1)
	suite.Equal(low.ID, triggered[0].ProductID)
}

func (suite *InventoryServiceTestSuite) reloadRule(id interface{}) *models.InventoryAlert {
	var rule models.InventoryAlert
	suite.NoError(suite.db.First(&rule, "id = ?", id).Error)
	return &rule
}

func TestInventoryServiceSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}
