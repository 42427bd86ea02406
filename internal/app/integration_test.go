package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdana/verdana-backend/config"
	"github.com/verdana/verdana-backend/internal/app/controller"
	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/internal/app/service"
	"github.com/verdana/verdana-backend/internal/db"
	"github.com/verdana/verdana-backend/internal/middleware"
	"gorm.io/gorm"
)

type TestServer struct {
	Router      *gin.Engine
	DB          *gorm.DB
	AuthService service.AuthService
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	wishlistRepo := repository.NewWishlistRepository(testDB)

	policy := config.SustainabilityConfig{
		TreesPerAmount:          30,
		CO2PerTree:              0.6,
		PackagingScoreThreshold: 70,
	}

	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(testDB, orderRepo, cartRepo, policy, nil)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	sustainabilityService := service.NewSustainabilityService(orderRepo, productRepo, policy)

	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	reviewController := controller.NewReviewController(reviewService)
	wishlistController := controller.NewWishlistController(wishlistService)
	sustainabilityController := controller.NewSustainabilityController(sustainabilityService)

	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.Me)
	}

	products := router.Group("/api/v1/products")
	{
		products.GET("", productController.ListProducts)
		products.GET("/:id", productController.GetProduct)
		products.GET("/:id/reviews", reviewController.GetProductReviews)
		products.POST("/:id/reviews", authMiddleware.Authenticate(), reviewController.CreateReview)
		products.POST("", authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"), productController.CreateProduct)
	}

	cart := router.Group("/api/v1/cart")
	cart.Use(authMiddleware.Authenticate())
	{
		cart.GET("", cartController.GetCart)
		cart.POST("", cartController.AddToCart)
		cart.PUT("/:id", cartController.UpdateCartItem)
		cart.DELETE("/:id", cartController.RemoveFromCart)
	}

	wishlist := router.Group("/api/v1/wishlist")
	wishlist.Use(authMiddleware.Authenticate())
	{
		wishlist.GET("", wishlistController.GetWishlist)
		wishlist.POST("", wishlistController.AddToWishlist)
		wishlist.DELETE("/:product_id", wishlistController.RemoveFromWishlist)
	}

	orders := router.Group("/api/v1/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.GET("", orderController.GetOrders)
		orders.GET("/:id", orderController.GetOrder)
		orders.POST("", orderController.CreateOrder)
	}

	sustainability := router.Group("/api/v1/sustainability")
	{
		sustainability.GET("/stats", sustainabilityController.GetStats)
		sustainability.GET("/me/impact", authMiddleware.Authenticate(), sustainabilityController.GetMyImpact)
	}

	return &TestServer{
		Router:      router,
		DB:          testDB,
		AuthService: authService,
	}
}

func TestCompleteShopperJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	// 1. Register a new user
	t.Log("Step 1: Register user")
	registerReq := map[string]string{
		"email":    "shopper@example.com",
		"password": "password123",
		"name":     "Test Shopper",
	}
	body, _ := json.Marshal(registerReq)
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var registerResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &registerResp)
	tokens := registerResp["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)

	// 2. Seed the catalog (direct insert for test convenience)
	t.Log("Step 2: Seed catalog")
	product := &model.Product{
		Name:                "Rosehip Facial Oil",
		Description:         "Cold-pressed facial oil in a glass bottle",
		Brand:               "Terra",
		Price:               24.50,
		Category:            model.CategorySkincare,
		Stock:               10,
		SustainabilityScore: 85,
		ImageURL:            "https://example.com/rosehip.jpg",
	}
	ts.DB.Create(product)

	// 3. Browse products
	t.Log("Step 3: Browse products")
	req = httptest.NewRequest("GET", "/api/v1/products?category=skincare", nil)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var productsResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &productsResp)
	assert.Equal(t, float64(1), productsResp["count"])

	// 4. Add product to cart
	t.Log("Step 4: Add to cart")
	addToCartReq := map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	}
	body, _ = json.Marshal(addToCartReq)
	req = httptest.NewRequest("POST", "/api/v1/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	// 5. View cart
	t.Log("Step 5: View cart")
	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var cartResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &cartResp)
	assert.Equal(t, float64(1), cartResp["count"])
	assert.Equal(t, float64(49.00), cartResp["subtotal"])

	// 6. Check out
	t.Log("Step 6: Create order")
	createOrderReq := map[string]string{
		"shipping_address": "12 Fern Lane, Bristol",
		"shipping_method":  "carbon_neutral",
	}
	body, _ = json.Marshal(createOrderReq)
	req = httptest.NewRequest("POST", "/api/v1/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var orderResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &orderResp)
	order := orderResp["order"].(map[string]interface{})
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, float64(49.00), order["subtotal"])
	assert.Equal(t, float64(5.00), order["shipping_cost"])
	assert.Equal(t, float64(54.00), order["total"])
	assert.Equal(t, float64(2), order["trees_planted"])

	// 7. Stock was decremented atomically with the order
	t.Log("Step 7: Verify stock")
	var refreshed model.Product
	require.NoError(t, ts.DB.First(&refreshed, product.ID).Error)
	assert.Equal(t, 8, refreshed.Stock)

	// 8. Cart is empty after checkout
	t.Log("Step 8: Verify cart is empty")
	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	json.Unmarshal(w.Body.Bytes(), &cartResp)
	assert.Equal(t, float64(0), cartResp["count"])

	// 9. View order history
	t.Log("Step 9: View order history")
	req = httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var ordersResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &ordersResp)
	orders := ordersResp["orders"].([]interface{})
	assert.Len(t, orders, 1)

	// 10. Personal sustainability impact reflects the order
	t.Log("Step 10: Check personal impact")
	req = httptest.NewRequest("GET", "/api/v1/sustainability/me/impact", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var impactResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &impactResp)
	impact := impactResp["impact"].(map[string]interface{})
	assert.Equal(t, float64(2), impact["trees_planted"])
	assert.Equal(t, float64(1), impact["order_count"])

	// 11. Review the purchase
	t.Log("Step 11: Leave a review")
	reviewReq := map[string]interface{}{
		"rating":  5,
		"title":   "Lovely texture",
		"comment": "Absorbs quickly and the bottle is refillable.",
	}
	body, _ = json.Marshal(reviewReq)
	req = httptest.NewRequest("POST", "/api/v1/products/1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, ts.DB.First(&refreshed, product.ID).Error)
	assert.Equal(t, 5.0, refreshed.RatingAverage)
	assert.Equal(t, 1, refreshed.ReviewCount)
}

func TestAdminOnlyRoutes(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	// Register a regular customer
	registerReq := map[string]string{
		"email":    "shopper@example.com",
		"password": "password123",
		"name":     "Test Shopper",
	}
	body, _ := json.Marshal(registerReq)
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var registerResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &registerResp)
	tokens := registerResp["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)

	// A customer cannot create catalog entries.
	productReq := map[string]interface{}{
		"name":     "Forbidden Cream",
		"price":    10.0,
		"category": "skincare",
	}
	body, _ = json.Marshal(productReq)
	req = httptest.NewRequest("POST", "/api/v1/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unauthenticated requests are rejected outright.
	req = httptest.NewRequest("POST", "/api/v1/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
