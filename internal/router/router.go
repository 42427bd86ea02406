package router

import (
	"github.com/gin-gonic/gin"
	"github.com/verdana/verdana-backend/config"
	"github.com/verdana/verdana-backend/internal/app/controller"
	"github.com/verdana/verdana-backend/internal/middleware"
)

type Router struct {
	authController           *controller.AuthController
	productController        *controller.ProductController
	cartController           *controller.CartController
	wishlistController       *controller.WishlistController
	orderController          *controller.OrderController
	reviewController         *controller.ReviewController
	sustainabilityController *controller.SustainabilityController
	inventoryController      *controller.InventoryController
	uploadController         *controller.UploadController
	notificationController   *controller.NotificationController
	authMiddleware           *middleware.AuthMiddleware
	config                   *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	wishlistController *controller.WishlistController,
	orderController *controller.OrderController,
	reviewController *controller.ReviewController,
	sustainabilityController *controller.SustainabilityController,
	inventoryController *controller.InventoryController,
	uploadController *controller.UploadController,
	notificationController *controller.NotificationController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:           authController,
		productController:        productController,
		cartController:           cartController,
		wishlistController:       wishlistController,
		orderController:          orderController,
		reviewController:         reviewController,
		sustainabilityController: sustainabilityController,
		inventoryController:      inventoryController,
		uploadController:         uploadController,
		notificationController:   notificationController,
		authMiddleware:           authMiddleware,
		config:                   cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Verdana API is running",
		})
	})

	if r.notificationController != nil {
		router.GET("/ws/notifications",
			r.authMiddleware.Authenticate(),
			r.notificationController.HandleWebSocket,
		)
	}

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/popular", r.productController.GetPopularProducts)
			products.GET("/:id", r.productController.GetProduct)
			products.GET("/:id/reviews", r.reviewController.GetProductReviews)

			products.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.CreateProduct,
			)
			products.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.UpdateProduct,
			)
			products.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.DeleteProduct,
			)

			products.POST("/:id/reviews",
				r.authMiddleware.Authenticate(),
				r.reviewController.CreateReview,
			)
		}

		reviews := v1.Group("/reviews")
		reviews.Use(r.authMiddleware.Authenticate())
		{
			reviews.PUT("/:id", r.reviewController.UpdateReview)
			reviews.DELETE("/:id", r.reviewController.DeleteReview)
		}

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/:id", r.cartController.RemoveFromCart)
			cart.DELETE("", r.cartController.ClearCart)
		}

		wishlist := v1.Group("/wishlist")
		wishlist.Use(r.authMiddleware.Authenticate())
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("", r.wishlistController.AddToWishlist)
			wishlist.DELETE("/:product_id", r.wishlistController.RemoveFromWishlist)
			wishlist.GET("/check/:product_id", r.wishlistController.CheckWishlist)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.POST("", r.orderController.CreateOrder)

			orders.PUT("/:id/status",
				r.authMiddleware.RequireRole("admin"),
				r.orderController.UpdateOrderStatus,
			)
		}

		sustainability := v1.Group("/sustainability")
		{
			sustainability.GET("/stats", r.sustainabilityController.GetStats)
			sustainability.GET("/me/impact",
				r.authMiddleware.Authenticate(),
				r.sustainabilityController.GetMyImpact,
			)
		}

		inventory := v1.Group("/inventory")
		inventory.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			inventory.POST("/adjust", r.inventoryController.AdjustStock)
			inventory.GET("/low-stock", r.inventoryController.GetLowStock)
			inventory.GET("/:product_id/logs", r.inventoryController.GetProductHistory)
		}

		if r.uploadController != nil {
			upload := v1.Group("/upload")
			upload.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
			{
				upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
