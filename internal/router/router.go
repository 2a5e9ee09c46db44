// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/config"
	"github.com/minimall/backend/internal/handlers"
	"github.com/minimall/backend/internal/middleware"
	"github.com/minimall/backend/internal/services"
	"github.com/minimall/backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	inventoryService := services.NewInventoryService(db, notificationService)

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	catalogService := services.NewCatalogService(db)
	productService := services.NewProductService(db)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, inventoryService)
	marketingService := services.NewMarketingService(db)
	paymentService := services.NewPaymentService(db, cfg, orderService)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(catalogService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	marketingHandler := handlers.NewMarketingHandler(marketingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(adminService, notificationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.PUT("/password", middleware.AuthRequired(), authHandler.ChangePassword)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.GET("/me", userHandler.GetProfile)
			users.PUT("/me", userHandler.UpdateProfile)
		}

		// Category routes (public reads)
		categories := v1.Group("/categories")
		{
			categories.GET("/tree", categoryHandler.GetCategoryTree)
			categories.GET("/:id", categoryHandler.GetCategory)
		}

		// Attribute and tag routes (public reads)
		v1.GET("/attributes", categoryHandler.ListAttributes)
		v1.GET("/tags", categoryHandler.ListTags)

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.GetProducts)
			products.GET("/popular", productHandler.GetPopularProducts)
			products.GET("/featured", productHandler.GetFeaturedProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
		}

		// Cart routes
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.DELETE("", cartHandler.ClearCart)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", middleware.CheckoutRateLimit(), orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		}

		// Coupon routes
		coupons := v1.Group("/coupons")
		coupons.Use(middleware.AuthRequired())
		{
			coupons.POST("/claim", marketingHandler.ClaimCoupon)
			coupons.GET("/mine", marketingHandler.ListMyCoupons)
			coupons.POST("/validate", marketingHandler.ValidateCoupon)
		}

		// Marketing routes (public reads)
		v1.GET("/promotions", marketingHandler.ListActivePromotions)
		flashSales := v1.Group("/flash-sales")
		{
			flashSales.GET("", marketingHandler.ListActiveFlashSales)
			flashSales.GET("/upcoming", marketingHandler.ListUpcomingFlashSales)
			flashSales.GET("/:id", marketingHandler.GetFlashSale)
		}

		// Points routes
		points := v1.Group("/points")
		{
			points.GET("/products", marketingHandler.ListPointsProducts)
			points.POST("/redeem", middleware.AuthRequired(), marketingHandler.RedeemPoints)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/intents", paymentHandler.CreatePaymentIntent)
			payments.POST("/confirm", paymentHandler.ConfirmPayment)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// User management
			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", userHandler.ListUsers)
				adminUsers.GET("/:id", userHandler.GetUser)
				adminUsers.PUT("/:id/status", userHandler.SetUserStatus)
				adminUsers.PUT("/:id/roles", userHandler.AssignRoles)
			}

			// RBAC management
			adminRoles := admin.Group("/roles")
			{
				adminRoles.GET("", userHandler.ListRoles)
				adminRoles.POST("", userHandler.CreateRole)
			}
			admin.GET("/permissions", userHandler.ListPermissions)

			// Category management
			adminCategories := admin.Group("/categories")
			{
				adminCategories.POST("", categoryHandler.CreateCategory)
				adminCategories.PUT("/reorder", categoryHandler.ReorderCategories)
				adminCategories.PUT("/:id", categoryHandler.UpdateCategory)
				adminCategories.DELETE("/:id", categoryHandler.DeleteCategory)
				adminCategories.PUT("/:id/status", categoryHandler.SetCategoryStatus)
			}

			// Attribute and tag management
			adminAttributes := admin.Group("/attributes")
			{
				adminAttributes.POST("", categoryHandler.CreateAttribute)
				adminAttributes.PUT("/:id", categoryHandler.UpdateAttribute)
				adminAttributes.DELETE("/:id", categoryHandler.DeleteAttribute)
			}
			adminTags := admin.Group("/tags")
			{
				adminTags.POST("", categoryHandler.CreateTag)
				adminTags.DELETE("/:id", categoryHandler.DeleteTag)
			}

			// Product management
			adminProducts := admin.Group("/products")
			{
				adminProducts.POST("", productHandler.CreateProduct)
				adminProducts.PUT("/:id", productHandler.UpdateProduct)
				adminProducts.DELETE("/:id", productHandler.DeleteProduct)
				adminProducts.POST("/images", middleware.UploadRateLimit(), productHandler.UploadImage)
			}

			// Order management
			adminOrders := admin.Group("/orders")
			{
				adminOrders.GET("", orderHandler.AdminListOrders)
				adminOrders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
				adminOrders.PUT("/batch-status", orderHandler.BatchUpdateOrderStatus)
			}

			// Inventory management
			adminInventory := admin.Group("/inventory")
			{
				adminInventory.POST("/adjustments", inventoryHandler.AdjustStock)
				adminInventory.GET("/records", inventoryHandler.ListRecords)
				adminInventory.GET("/alerts", inventoryHandler.ListAlertRules)
				adminInventory.POST("/alerts", inventoryHandler.CreateAlertRule)
				adminInventory.GET("/alerts/triggered", inventoryHandler.ListTriggeredAlerts)
				adminInventory.PUT("/alerts/:id", inventoryHandler.UpdateAlertRule)
				adminInventory.DELETE("/alerts/:id", inventoryHandler.DeleteAlertRule)
				adminInventory.PUT("/alerts/:id/status", inventoryHandler.SetAlertRuleStatus)
			}

			// Marketing management
			adminCoupons := admin.Group("/coupons")
			{
				adminCoupons.GET("", marketingHandler.ListCoupons)
				adminCoupons.POST("", marketingHandler.CreateCoupon)
				adminCoupons.PUT("/:id/status", marketingHandler.SetCouponStatus)
			}
			adminPromotions := admin.Group("/promotions")
			{
				adminPromotions.POST("", marketingHandler.CreatePromotion)
				adminPromotions.PUT("/:id/status", marketingHandler.SetPromotionStatus)
			}
			admin.POST("/flash-sales", marketingHandler.CreateFlashSale)

			// Payment management
			admin.POST("/payments/:id/refund", paymentHandler.RefundOrder)

			// Dashboard and statistics
			admin.GET("/dashboard", adminHandler.GetDashboard)
			adminStats := admin.Group("/stats")
			{
				adminStats.GET("/sales", adminHandler.GetSalesSeries)
				adminStats.GET("/top-products", adminHandler.GetTopProducts)
				adminStats.GET("/orders", adminHandler.GetOrderStatusBreakdown)
				adminStats.GET("/users", adminHandler.GetUserGrowth)
			}

			// Notifications
			adminNotifications := admin.Group("/notifications")
			{
				adminNotifications.GET("", adminHandler.ListNotifications)
				adminNotifications.PUT("/:id/read", adminHandler.MarkNotificationRead)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
