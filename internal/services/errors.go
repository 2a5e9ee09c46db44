// internal/services/errors.go
package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map them onto HTTP
// status codes and localized messages with errors.Is.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is not active")

	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryNameTaken   = errors.New("category name already exists")
	ErrCategoryHasChildren = errors.New("category has subcategories")
	ErrCategoryHasProducts = errors.New("category has products")
	ErrCategoryCycle       = errors.New("category cannot be moved under its own subtree")

	ErrProductNotFound   = errors.New("product not found")
	ErrSKUCodeTaken      = errors.New("sku code already exists")
	ErrSKUNotFound       = errors.New("sku not found")
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrTagNotFound       = errors.New("tag not found")

	ErrCartItemNotFound = errors.New("cart item not found")

	ErrOrderNotFound          = errors.New("order not found")
	ErrEmptyOrder             = errors.New("order has no items")
	ErrMissingAddress         = errors.New("shipping address is required")
	ErrInvalidAmount          = errors.New("invalid monetary amount")
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrInvalidStateTransition = errors.New("order status transition not allowed")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlertRuleExists   = errors.New("alert rule already exists for product")
	ErrAlertRuleNotFound = errors.New("alert rule not found")
	ErrInvalidAlertRange = errors.New("min stock must be below max stock")

	ErrCouponNotFound       = errors.New("coupon not found or inactive")
	ErrCouponExhausted      = errors.New("coupon quantity exhausted")
	ErrCouponAlreadyClaimed = errors.New("coupon already claimed")
	ErrCouponNotUsable      = errors.New("coupon not usable for this order")
	ErrPromotionNotFound    = errors.New("promotion not found or inactive")
	ErrFlashSaleNotFound    = errors.New("flash sale not found or inactive")
	ErrInsufficientPoints   = errors.New("insufficient points")
	ErrRedemptionOutOfStock = errors.New("points product out of stock")
)
