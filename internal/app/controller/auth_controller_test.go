package controller

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
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/internal/app/service"
	"github.com/verdana/verdana-backend/internal/db"
	"gorm.io/gorm"
)

func setupAuthControllerTest(t *testing.T) (*AuthController, *gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, "test-controller-secret", 15*time.Minute, 7*24*time.Hour)
	authController := NewAuthController(authService)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return authController, router, testDB
}

func TestAuthController_Register_Success(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/register", controller.Register)

	body, _ := json.Marshal(RegisterRequest{
		Email:    "anna@example.com",
		Password: "password123",
		Name:     "Anna",
	})

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	user := response["user"].(map[string]interface{})
	assert.Equal(t, "anna@example.com", user["email"])
	assert.Equal(t, "customer", user["role"])

	tokens := response["tokens"].(map[string]interface{})
	assert.NotEmpty(t, tokens["access_token"])
	assert.NotEmpty(t, tokens["refresh_token"])
}

func TestAuthController_Register_InvalidBody(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/register", controller.Register)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "Invalid email",
			body: `{"email": "not-an-email", "password": "password123", "name": "Anna"}`,
		},
		{
			name: "Short password",
			body: `{"email": "anna@example.com", "password": "short", "name": "Anna"}`,
		},
		{
			name: "Missing name",
			body: `{"email": "anna@example.com", "password": "password123"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthController_Register_DuplicateEmail(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/register", controller.Register)

	body, _ := json.Marshal(RegisterRequest{
		Email:    "anna@example.com",
		Password: "password123",
		Name:     "Anna",
	})

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already in use")
}

func TestAuthController_Login(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/register", controller.Register)
	router.POST("/login", controller.Login)

	registerBody, _ := json.Marshal(RegisterRequest{
		Email:    "anna@example.com",
		Password: "password123",
		Name:     "Anna",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	loginBody, _ := json.Marshal(LoginRequest{
		Email:    "anna@example.com",
		Password: "password123",
	})
	req = httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestAuthController_Login_WrongPassword(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/register", controller.Register)
	router.POST("/login", controller.Login)

	registerBody, _ := json.Marshal(RegisterRequest{
		Email:    "anna@example.com",
		Password: "password123",
		Name:     "Anna",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	loginBody, _ := json.Marshal(LoginRequest{
		Email:    "anna@example.com",
		Password: "wrongpassword",
	})
	req = httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_Logout_AlwaysSucceeds(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/logout", controller.Logout)

	// No token, no body. Logout still reports success.
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logged out successfully")
}

func TestAuthController_Me(t *testing.T) {
	controller, router, testDB := setupAuthControllerTest(t)

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, "test-controller-secret", 15*time.Minute, 7*24*time.Hour)
	user, _, err := authService.Register("anna@example.com", "password123", "Anna")
	require.NoError(t, err)

	router.GET("/me", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Me(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anna@example.com")
}

func TestAuthController_UpdateMe(t *testing.T) {
	controller, router, testDB := setupAuthControllerTest(t)

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, "test-controller-secret", 15*time.Minute, 7*24*time.Hour)
	user, _, err := authService.Register("anna@example.com", "password123", "Anna")
	require.NoError(t, err)

	router.PUT("/me", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.UpdateMe(c)
	})

	body, _ := json.Marshal(UpdateProfileRequest{
		Name:            "Anna Lindqvist",
		ShippingAddress: "7 Birch Street, Leeds",
	})
	req := httptest.NewRequest(http.MethodPut, "/me", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Anna Lindqvist")
	assert.Contains(t, w.Body.String(), "7 Birch Street, Leeds")
}
