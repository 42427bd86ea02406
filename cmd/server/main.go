package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/verdana/verdana-backend/config"
	"github.com/verdana/verdana-backend/internal/app/controller"
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/internal/app/service"
	"github.com/verdana/verdana-backend/internal/db"
	"github.com/verdana/verdana-backend/internal/middleware"
	"github.com/verdana/verdana-backend/internal/router"
	"github.com/verdana/verdana-backend/internal/scheduler"
	"github.com/verdana/verdana-backend/internal/storage"
	ws "github.com/verdana/verdana-backend/internal/websocket"
	"github.com/verdana/verdana-backend/pkg/logger"
	"github.com/verdana/verdana-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Verdana Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Token revocation needs Redis; without it logout still responds but
	// revoked tokens stay valid until expiry.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	wishlistRepo := repository.NewWishlistRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	inventoryLogRepo := repository.NewInventoryLogRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	// WebSocket hub for order status notifications
	hub := ws.NewHub()
	go hub.Run()

	// Services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	orderService := service.NewOrderService(db.GetDB(), orderRepo, cartRepo, cfg.Sustainability, hub)
	inventoryService := service.NewInventoryService(db.GetDB(), productRepo, inventoryLogRepo, cfg.Inventory.LowStockThreshold)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	sustainabilityService := service.NewSustainabilityService(orderRepo, productRepo, cfg.Sustainability)

	// Controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	wishlistController := controller.NewWishlistController(wishlistService)
	orderController := controller.NewOrderController(orderService)
	reviewController := controller.NewReviewController(reviewService)
	sustainabilityController := controller.NewSustainabilityController(sustainabilityService)
	inventoryController := controller.NewInventoryController(inventoryService)
	notificationController := controller.NewNotificationController(hub, cfg.CORS.AllowedOrigins)

	var uploadController *controller.UploadController
	if cfg.S3.Bucket != "" {
		s3Storage := storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
		uploadController = controller.NewUploadController(s3Storage)
	} else {
		logger.Warn("S3 bucket not configured, upload endpoints disabled", nil)
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Daily low-stock sweep
	lowStockScheduler := scheduler.NewLowStockScheduler(inventoryService)
	if err := lowStockScheduler.Start(); err != nil {
		logger.Error("Failed to start low stock scheduler", err)
	}
	defer lowStockScheduler.Stop()

	r := router.NewRouter(
		authController,
		productController,
		cartController,
		wishlistController,
		orderController,
		reviewController,
		sustainabilityController,
		inventoryController,
		uploadController,
		notificationController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
