// internal/handlers/category.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/minimall/backend/internal/i18n"
	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/services"
	"github.com/minimall/backend/internal/utils"
)

type CategoryHandler struct {
	catalogService *services.CatalogService
}

func NewCategoryHandler(catalogService *services.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalogService: catalogService}
}

// GET /categories
func (h *CategoryHandler) GetCategoryTree(c *gin.Context) {
	tree, err := h.catalogService.GetCategoryTree()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"categories": tree})
}

// GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"category": category})
}

// POST /admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	category, err := h.catalogService.CreateCategory(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyCategoryCreated),
		"category": category,
	})
}

// PUT /admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	category, err := h.catalogService.UpdateCategory(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyCategoryUpdated),
		"category": category,
	})
}

// DELETE /admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCategoryDeleted),
	})
}

// PUT /admin/categories/reorder
func (h *CategoryHandler) ReorderCategories(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ReorderCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.catalogService.ReorderCategories(&req); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCategoryUpdated),
	})
}

// PUT /admin/categories/:id/status
func (h *CategoryHandler) SetCategoryStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.CategoryStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.catalogService.SetCategoryStatus(id, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCategoryUpdated),
	})
}

// Attributes

// GET /attributes
func (h *CategoryHandler) ListAttributes(c *gin.Context) {
	attributes, err := h.catalogService.ListAttributes()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"attributes": attributes})
}

// POST /admin/attributes
func (h *CategoryHandler) CreateAttribute(c *gin.Context) {
	var req services.AttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	attribute, err := h.catalogService.CreateAttribute(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"attribute": attribute})
}

// PUT /admin/attributes/:id
func (h *CategoryHandler) UpdateAttribute(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.AttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	attribute, err := h.catalogService.UpdateAttribute(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"attribute": attribute})
}

// DELETE /admin/attributes/:id
func (h *CategoryHandler) DeleteAttribute(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteAttribute(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// Tags

// GET /tags
func (h *CategoryHandler) ListTags(c *gin.Context) {
	tags, err := h.catalogService.ListTags()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"tags": tags})
}

// POST /admin/tags
func (h *CategoryHandler) CreateTag(c *gin.Context) {
	var req services.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	tag, err := h.catalogService.CreateTag(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"tag": tag})
}

// DELETE /admin/tags/:id
func (h *CategoryHandler) DeleteTag(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteTag(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
