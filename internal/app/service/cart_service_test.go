package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/internal/db"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := NewCartService(cartRepo, productRepo)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleCustomer,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:     "Shea Body Butter",
		Brand:    "Terra",
		Price:    12.00,
		Category: model.CategoryBodycare,
		Stock:    5,
	}
	testDB.Create(product)

	return cartService, testDB, user, product
}

func TestCartService_AddToCart_Success(t *testing.T) {
	cartService, _, user, product := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, product.ID, item.ProductID)
}

func TestCartService_AddToCart_MergesQuantities(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	first, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	second, err := cartService.AddToCart(user.ID, product.ID, 3)
	require.NoError(t, err)

	// Same line, merged quantity, no duplicate rows.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	var count int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCartService_AddToCart_InvalidQuantity(t *testing.T) {
	cartService, _, user, product := setupCartServiceTest(t)

	for _, qty := range []int{0, -1, -100} {
		_, err := cartService.AddToCart(user.ID, product.ID, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestCartService_AddToCart_ProductNotFound(t *testing.T) {
	cartService, _, user, _ := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddToCart_InsufficientStock(t *testing.T) {
	cartService, _, user, product := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, product.ID, 6)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Merged quantity counts against stock too.
	_, err = cartService.AddToCart(user.ID, product.ID, 3)
	require.NoError(t, err)
	_, err = cartService.AddToCart(user.ID, product.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCartService_UpdateCartItem_SetQuantity(t *testing.T) {
	cartService, _, user, product := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, product.ID, 1)
	require.NoError(t, err)

	updated, err := cartService.UpdateCartItem(user.ID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
}

func TestCartService_UpdateCartItem_ZeroRemoves(t *testing.T) {
	cartService, _, user, product := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	removed, err := cartService.UpdateCartItem(user.ID, item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, removed)

	summary, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 0)
}

func TestCartService_UpdateCartItem_OtherUsersItem(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, product.ID, 1)
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleCustomer}
	testDB.Create(other)

	_, err = cartService.UpdateCartItem(other.ID, item.ID, 3)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_RemoveFromCart_Idempotent(t *testing.T) {
	cartService, _, user, product := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, cartService.RemoveFromCart(user.ID, item.ID))

	// Removing again is a no-op, not an error.
	assert.NoError(t, cartService.RemoveFromCart(user.ID, item.ID))
	assert.NoError(t, cartService.RemoveFromCart(user.ID, 9999))
}

func TestCartService_ClearCart(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	second := &model.Product{
		Name:     "Lavender Shampoo Bar",
		Brand:    "Terra",
		Price:    8.50,
		Category: model.CategoryHaircare,
		Stock:    20,
	}
	testDB.Create(second)

	_, err := cartService.AddToCart(user.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = cartService.AddToCart(user.ID, second.ID, 2)
	require.NoError(t, err)

	removed, err := cartService.ClearCart(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// Clearing an already empty cart reports zero.
	removed, err = cartService.ClearCart(user.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCartService_GetUserCart_Subtotal(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	second := &model.Product{
		Name:     "Lavender Shampoo Bar",
		Brand:    "Terra",
		Price:    8.50,
		Category: model.CategoryHaircare,
		Stock:    20,
	}
	testDB.Create(second)

	_, err := cartService.AddToCart(user.ID, product.ID, 2) // 24.00
	require.NoError(t, err)
	_, err = cartService.AddToCart(user.ID, second.ID, 1) // 8.50
	require.NoError(t, err)

	summary, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 32.50, summary.Subtotal)

	// Live prices: a catalog update changes the subtotal.
	testDB.Model(&model.Product{}).Where("id = ?", product.ID).Update("price", 15.00)
	summary, err = cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 38.50, summary.Subtotal)
}
