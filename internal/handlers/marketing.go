// internal/handlers/marketing.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minimall/backend/internal/i18n"
	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/services"
	"github.com/minimall/backend/internal/utils"
)

type MarketingHandler struct {
	marketingService *services.MarketingService
}

func NewMarketingHandler(marketingService *services.MarketingService) *MarketingHandler {
	return &MarketingHandler{marketingService: marketingService}
}

// POST /coupons/claim
func (h *MarketingHandler) ClaimCoupon(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	claimed, err := h.marketingService.ClaimCoupon(userID, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCouponClaimed),
		"coupon":  claimed,
	})
}

// GET /coupons/mine
func (h *MarketingHandler) ListMyCoupons(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	unusedOnly, _ := strconv.ParseBool(c.DefaultQuery("unused_only", "false"))
	coupons, err := h.marketingService.ListUserCoupons(userID, unusedOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"coupons": coupons})
}

// POST /coupons/validate
func (h *MarketingHandler) ValidateCoupon(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		CouponID string  `json:"coupon_id" binding:"required,uuid"`
		Total    float64 `json:"total" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	couponID, ok := parseUUIDField(c, req.CouponID, "coupon_id")
	if !ok {
		return
	}

	discounted, err := h.marketingService.ValidateCoupon(userID, couponID, req.Total)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"original_total":   req.Total,
		"discounted_total": discounted,
	})
}

// GET /promotions
func (h *MarketingHandler) ListActivePromotions(c *gin.Context) {
	promotions, err := h.marketingService.ListActivePromotions()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"promotions": promotions})
}

// GET /flash-sales
func (h *MarketingHandler) ListActiveFlashSales(c *gin.Context) {
	sales, err := h.marketingService.ListActiveFlashSales()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"flash_sales": sales})
}

// GET /flash-sales/upcoming
func (h *MarketingHandler) ListUpcomingFlashSales(c *gin.Context) {
	sales, err := h.marketingService.ListUpcomingFlashSales()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"flash_sales": sales})
}

// GET /flash-sales/:id
func (h *MarketingHandler) GetFlashSale(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	sale, err := h.marketingService.GetFlashSale(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"flash_sale": sale})
}

// GET /points/products
func (h *MarketingHandler) ListPointsProducts(c *gin.Context) {
	products, err := h.marketingService.ListPointsProducts()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// POST /points/redeem
func (h *MarketingHandler) RedeemPoints(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"product_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	productID, ok := parseUUIDField(c, req.ProductID, "product_id")
	if !ok {
		return
	}

	redemption, err := h.marketingService.RedeemPoints(userID, productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyPointsRedeemed),
		"redemption": redemption,
	})
}

// Admin endpoints

// POST /admin/coupons
func (h *MarketingHandler) CreateCoupon(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	coupon, err := h.marketingService.CreateCoupon(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"coupon": coupon})
}

// GET /admin/coupons
func (h *MarketingHandler) ListCoupons(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	coupons, total, err := h.marketingService.ListCoupons(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(coupons, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/coupons/:id/status
func (h *MarketingHandler) SetCouponStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.MarketingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.marketingService.SetCouponStatus(id, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"updated": true})
}

// POST /admin/promotions
func (h *MarketingHandler) CreatePromotion(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	promotion, err := h.marketingService.CreatePromotion(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"promotion": promotion})
}

// PUT /admin/promotions/:id/status
func (h *MarketingHandler) SetPromotionStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.MarketingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.marketingService.SetPromotionStatus(id, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"updated": true})
}

// POST /admin/flash-sales
func (h *MarketingHandler) CreateFlashSale(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateFlashSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	sale, err := h.marketingService.CreateFlashSale(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"flash_sale": sale})
}
