// internal/handlers/inventory.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/minimall/backend/internal/i18n"
	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/services"
	"github.com/minimall/backend/internal/utils"
)

type InventoryHandler struct {
	inventoryService *services.InventoryService
}

func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// POST /admin/inventory/adjustments
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	operatorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	record, err := h.inventoryService.AdjustStock(operatorID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInventoryRecordAdded),
		"record":  record,
	})
}

// GET /admin/inventory/records
func (h *InventoryHandler) ListRecords(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := services.RecordSearchParams{PaginationParams: params}

	if productIDStr := c.Query("product_id"); productIDStr != "" {
		if productID, err := uuid.Parse(productIDStr); err == nil {
			searchParams.ProductID = &productID
		}
	}
	if opType := c.Query("type"); opType != "" {
		stockOpType := models.StockOpType(opType)
		searchParams.Type = &stockOpType
	}
	if fromStr := c.Query("date_from"); fromStr != "" {
		if from, err := time.Parse(time.RFC3339, fromStr); err == nil {
			searchParams.DateFrom = &from
		}
	}
	if toStr := c.Query("date_to"); toStr != "" {
		if to, err := time.Parse(time.RFC3339, toStr); err == nil {
			searchParams.DateTo = &to
		}
	}

	records, total, err := h.inventoryService.ListRecords(searchParams)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(records, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /admin/inventory/alerts
func (h *InventoryHandler) CreateAlertRule(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.AlertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	rule, err := h.inventoryService.CreateAlertRule(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInventoryAlertCreated),
		"alert":   rule,
	})
}

// PUT /admin/inventory/alerts/:id
func (h *InventoryHandler) UpdateAlertRule(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.AlertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	rule, err := h.inventoryService.UpdateAlertRule(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInventoryAlertUpdated),
		"alert":   rule,
	})
}

// DELETE /admin/inventory/alerts/:id
func (h *InventoryHandler) DeleteAlertRule(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.inventoryService.DeleteAlertRule(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInventoryAlertDeleted),
	})
}

// PUT /admin/inventory/alerts/:id/status
func (h *InventoryHandler) SetAlertRuleStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.AlertStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.inventoryService.SetAlertRuleStatus(id, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInventoryAlertUpdated),
	})
}

// GET /admin/inventory/alerts
func (h *InventoryHandler) ListAlertRules(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := services.AlertSearchParams{PaginationParams: params}

	if productIDStr := c.Query("product_id"); productIDStr != "" {
		if productID, err := uuid.Parse(productIDStr); err == nil {
			searchParams.ProductID = &productID
		}
	}
	if alertType := c.Query("alert_type"); alertType != "" {
		at := models.AlertType(alertType)
		searchParams.AlertType = &at
	}
	if status := c.Query("status"); status != "" {
		st := models.AlertStatus(status)
		searchParams.Status = &st
	}

	rules, total, err := h.inventoryService.ListAlertRules(searchParams)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(rules, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /admin/inventory/alerts/triggered
func (h *InventoryHandler) ListTriggeredAlerts(c *gin.Context) {
	rules, err := h.inventoryService.ListTriggeredAlerts()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"alerts": rules})
}
