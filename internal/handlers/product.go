// internal/handlers/product.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/minimall/backend/internal/i18n"
	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/services"
	"github.com/minimall/backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := services.ProductSearchParams{PaginationParams: params}

	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		if categoryID, err := uuid.Parse(categoryIDStr); err == nil {
			searchParams.CategoryID = &categoryID
		}
	}
	// Only admins may list products outside on_sale.
	if status := c.Query("status"); status != "" && isAdmin(c) {
		productStatus := models.ProductStatus(status)
		searchParams.Status = &productStatus
	}
	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := strconv.ParseFloat(priceMinStr, 64); err == nil {
			searchParams.PriceMin = &priceMin
		}
	}
	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := strconv.ParseFloat(priceMaxStr, 64); err == nil {
			searchParams.PriceMax = &priceMax
		}
	}
	if tagIDStr := c.Query("tag_id"); tagIDStr != "" {
		if tagID, err := uuid.Parse(tagIDStr); err == nil {
			searchParams.TagID = &tagID
		}
	}
	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		if inStock, err := strconv.ParseBool(inStockStr); err == nil {
			searchParams.InStock = &inStock
		}
	}
	if featuredStr := c.Query("is_featured"); featuredStr != "" {
		if featured, err := strconv.ParseBool(featuredStr); err == nil {
			searchParams.IsFeatured = &featured
		}
	}
	if newStr := c.Query("is_new"); newStr != "" {
		if isNew, err := strconv.ParseBool(newStr); err == nil {
			searchParams.IsNew = &isNew
		}
	}
	if hotStr := c.Query("is_hot"); hotStr != "" {
		if isHot, err := strconv.ParseBool(hotStr); err == nil {
			searchParams.IsHot = &isHot
		}
	}

	products, total, err := h.productService.SearchProducts(searchParams)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	// View counts track customer traffic, not admin edits.
	product, err := h.productService.GetProduct(id, !isAdmin(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// GET /products/popular
func (h *ProductHandler) GetPopularProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	products, err := h.productService.GetPopularProducts(limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// GET /products/featured
func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	products, err := h.productService.GetFeaturedProducts(limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.CreateProduct(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductCreated),
		"product": product,
	})
}

// PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductUpdated),
		"product": product,
	})
}

// DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductDeleted),
	})
}

// POST /admin/products/images
func (h *ProductHandler) UploadImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "file"), err.Error())
		return
	}
	defer file.Close()

	if err := h.storageService.ValidateImage(file); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	options := h.storageService.GetDefaultUploadOptions("products")
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed))
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileUploadSuccess),
		"file":    result,
	})
}
