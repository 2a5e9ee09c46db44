// internal/handlers/order.go
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

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderCreated),
		"order":   order,
	})
}

// GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	searchParams := services.OrderSearchParams{PaginationParams: params}
	searchParams.UserID = &userID
	applyOrderFilters(c, &searchParams)

	orders, total, err := h.orderService.ListOrders(searchParams)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	scope := &userID
	if isAdmin(c) {
		scope = nil
	}

	order, err := h.orderService.GetOrder(orderID, scope)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	// Customers may only cancel their own orders.
	if !isAdmin(c) {
		if _, err := h.orderService.GetOrder(orderID, &userID); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	var req struct {
		Remark string `json:"remark,omitempty"`
	}
	c.ShouldBindJSON(&req)

	order, err := h.orderService.CancelOrder(orderID, userID, req.Remark)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderCancelled),
		"order":   order,
	})
}

// GET /admin/orders
func (h *OrderHandler) AdminListOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := services.OrderSearchParams{PaginationParams: params}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			searchParams.UserID = &userID
		}
	}
	applyOrderFilters(c, &searchParams)

	orders, total, err := h.orderService.ListOrders(searchParams)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	operatorID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.orderService.UpdateOrderStatus(orderID, operatorID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderStatusUpdated),
		"order":   order,
	})
}

// PUT /admin/orders/status
func (h *OrderHandler) BatchUpdateOrderStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	operatorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.BatchUpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.orderService.BatchUpdateOrderStatus(operatorID, &req); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderStatusUpdated),
		"updated": len(req.OrderIDs),
	})
}

func applyOrderFilters(c *gin.Context, searchParams *services.OrderSearchParams) {
	if status := c.Query("status"); status != "" {
		orderStatus := models.OrderStatus(status)
		searchParams.Status = &orderStatus
	}
	if orderNo := c.Query("order_no"); orderNo != "" {
		searchParams.OrderNo = orderNo
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
}
