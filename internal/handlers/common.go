// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/minimall/backend/internal/i18n"
	"github.com/minimall/backend/internal/services"
	"github.com/minimall/backend/internal/utils"
)

// serviceErrorKey maps service sentinels onto HTTP status and i18n message key.
var serviceErrors = []struct {
	err    error
	status int
	key    string
}{
	{services.ErrUserNotFound, http.StatusNotFound, i18n.KeyUserNotFound},
	{services.ErrUserExists, http.StatusConflict, i18n.KeyAuthUserExists},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, i18n.KeyAuthInvalidCredentials},
	{services.ErrAccountInactive, http.StatusForbidden, i18n.KeyAuthInvalidCredentials},

	{services.ErrCategoryNotFound, http.StatusNotFound, i18n.KeyCategoryNotFound},
	{services.ErrCategoryNameTaken, http.StatusConflict, i18n.KeyCategoryNameTaken},
	{services.ErrCategoryHasChildren, http.StatusConflict, i18n.KeyCategoryHasChildren},
	{services.ErrCategoryHasProducts, http.StatusConflict, i18n.KeyCategoryHasProducts},
	{services.ErrCategoryCycle, http.StatusBadRequest, i18n.KeyCategoryCycle},

	{services.ErrProductNotFound, http.StatusNotFound, i18n.KeyProductNotFound},
	{services.ErrSKUCodeTaken, http.StatusConflict, i18n.KeyProductSKUTaken},
	{services.ErrSKUNotFound, http.StatusNotFound, i18n.KeyProductNotFound},
	{services.ErrAttributeNotFound, http.StatusNotFound, i18n.KeyAttributeNotFound},
	{services.ErrTagNotFound, http.StatusNotFound, i18n.KeyTagNotFound},

	{services.ErrCartItemNotFound, http.StatusNotFound, i18n.KeyCartItemNotFound},

	{services.ErrOrderNotFound, http.StatusNotFound, i18n.KeyOrderNotFound},
	{services.ErrEmptyOrder, http.StatusBadRequest, i18n.KeyOrderEmpty},
	{services.ErrMissingAddress, http.StatusBadRequest, i18n.KeyOrderMissingAddress},
	{services.ErrInvalidAmount, http.StatusBadRequest, i18n.KeyOrderInvalidAmount},
	{services.ErrInvalidQuantity, http.StatusBadRequest, i18n.KeyValidationInvalid},
	{services.ErrInvalidStateTransition, http.StatusConflict, i18n.KeyOrderInvalidTransition},

	{services.ErrInsufficientStock, http.StatusConflict, i18n.KeyInventoryInsufficient},
	{services.ErrAlertRuleExists, http.StatusConflict, i18n.KeyInventoryAlertExists},
	{services.ErrAlertRuleNotFound, http.StatusNotFound, i18n.KeyInventoryAlertNotFound},
	{services.ErrInvalidAlertRange, http.StatusBadRequest, i18n.KeyValidationInvalid},

	{services.ErrCouponNotFound, http.StatusNotFound, i18n.KeyCouponNotFound},
	{services.ErrCouponExhausted, http.StatusConflict, i18n.KeyCouponExhausted},
	{services.ErrCouponAlreadyClaimed, http.StatusConflict, i18n.KeyCouponAlreadyClaimed},
	{services.ErrCouponNotUsable, http.StatusConflict, i18n.KeyCouponNotUsable},
	{services.ErrPromotionNotFound, http.StatusNotFound, i18n.KeyPromotionNotFound},
	{services.ErrFlashSaleNotFound, http.StatusNotFound, i18n.KeyFlashSaleNotFound},
	{services.ErrInsufficientPoints, http.StatusConflict, i18n.KeyPointsInsufficient},
	{services.ErrRedemptionOutOfStock, http.StatusConflict, i18n.KeyProductOutOfStock},
}

// respondServiceError translates a service error into an HTTP response.
// Unrecognized errors become 500s without leaking internals to the client.
func respondServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	for _, mapping := range serviceErrors {
		if errors.Is(err, mapping.err) {
			message := i18n.T(lang, mapping.key)
			utils.ErrorResponse(c, mapping.status, "SERVICE_ERROR", message, err.Error())
			return
		}
	}

	if validationErrors := utils.GetValidationErrors(errors.Unwrap(err)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	utils.InternalErrorResponse(c, "")
}

// currentUserID pulls the authenticated user from the gin context. Handlers
// behind AuthRequired can rely on it being present.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a :id style path parameter.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseUUIDField parses a uuid carried in a request body field.
func parseUUIDField(c *gin.Context, value, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

func isAdmin(c *gin.Context) bool {
	role, ok := utils.GetUserRoleFromContext(c)
	return ok && role == "admin"
}
