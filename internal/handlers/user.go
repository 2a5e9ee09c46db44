// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/minimall/backend/internal/i18n"
	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/services"
	"github.com/minimall/backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserUpdated),
		"user":    user,
	})
}

// GET /admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := services.UserSearchParams{PaginationParams: params}

	if role := c.Query("role"); role != "" {
		userRole := models.UserRole(role)
		searchParams.Role = &userRole
	}
	if status := c.Query("status"); status != "" {
		userStatus := models.UserStatus(status)
		searchParams.Status = &userStatus
	}

	users, total, err := h.userService.ListUsers(searchParams)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(users, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /admin/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /admin/users/:id/status
func (h *UserHandler) SetUserStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.UserStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.userService.SetUserStatus(id, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserUpdated),
	})
}

// PUT /admin/users/:id/roles
func (h *UserHandler) AssignRoles(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		RoleIDs []uuid.UUID `json:"role_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.userService.AssignRoles(id, req.RoleIDs); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserUpdated),
	})
}

// POST /admin/roles
func (h *UserHandler) CreateRole(c *gin.Context) {
	var req services.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	role, err := h.userService.CreateRole(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"role": role})
}

// GET /admin/roles
func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.userService.ListRoles()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"roles": roles})
}

// GET /admin/permissions
func (h *UserHandler) ListPermissions(c *gin.Context) {
	permissions, err := h.userService.ListPermissions()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"permissions": permissions})
}
