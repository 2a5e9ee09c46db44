// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAdminAccessDenied      = "admin.access_denied"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserUpdated        = "user.updated"
	KeyUserDeleted        = "user.deleted"
	KeyUserPasswordChanged = "user.password_changed"

	// Catalog
	KeyCategoryCreated    = "category.created"
	KeyCategoryUpdated    = "category.updated"
	KeyCategoryDeleted    = "category.deleted"
	KeyCategoryNotFound   = "category.not_found"
	KeyCategoryNameTaken  = "category.name_taken"
	KeyCategoryHasChildren = "category.has_children"
	KeyCategoryHasProducts = "category.has_products"
	KeyCategoryCycle      = "category.cycle"

	KeyProductCreated    = "product.created"
	KeyProductUpdated    = "product.updated"
	KeyProductDeleted    = "product.deleted"
	KeyProductNotFound   = "product.not_found"
	KeyProductSKUTaken   = "product.sku_taken"
	KeyProductOutOfStock = "product.out_of_stock"

	KeyAttributeNotFound = "attribute.not_found"
	KeyTagNotFound       = "tag.not_found"

	// Cart
	KeyCartItemAdded   = "cart.item_added"
	KeyCartItemUpdated = "cart.item_updated"
	KeyCartItemDeleted = "cart.item_deleted"
	KeyCartCleared     = "cart.cleared"
	KeyCartItemNotFound = "cart.item_not_found"

	// Orders
	KeyOrderCreated          = "order.created"
	KeyOrderCancelled        = "order.cancelled"
	KeyOrderStatusUpdated    = "order.status_updated"
	KeyOrderNotFound         = "order.not_found"
	KeyOrderEmpty            = "order.empty"
	KeyOrderMissingAddress   = "order.missing_address"
	KeyOrderInvalidAmount    = "order.invalid_amount"
	KeyOrderInvalidTransition = "order.invalid_transition"

	// Inventory
	KeyInventoryRecordAdded  = "inventory.record_added"
	KeyInventoryInsufficient = "inventory.insufficient"
	KeyInventoryAlertCreated = "inventory.alert_created"
	KeyInventoryAlertUpdated = "inventory.alert_updated"
	KeyInventoryAlertDeleted = "inventory.alert_deleted"
	KeyInventoryAlertExists  = "inventory.alert_exists"
	KeyInventoryAlertNotFound = "inventory.alert_not_found"

	// Marketing
	KeyCouponClaimed     = "coupon.claimed"
	KeyCouponNotFound    = "coupon.not_found"
	KeyCouponExhausted   = "coupon.exhausted"
	KeyCouponAlreadyClaimed = "coupon.already_claimed"
	KeyCouponMinPurchase = "coupon.min_purchase"
	KeyCouponNotUsable   = "coupon.not_usable"
	KeyPointsInsufficient = "points.insufficient"
	KeyPointsRedeemed    = "points.redeemed"
	KeyPromotionNotFound = "promotion.not_found"
	KeyFlashSaleNotFound = "flash_sale.not_found"

	// Uploads
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
)
