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

func setupInventoryServiceTest(t *testing.T) (InventoryService, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	inventoryLogRepo := repository.NewInventoryLogRepository(testDB)
	inventoryService := NewInventoryService(testDB, productRepo, inventoryLogRepo, 5)

	admin := &model.User{
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Name:         "Admin",
		Role:         model.RoleAdmin,
	}
	testDB.Create(admin)

	product := &model.Product{
		Name:     "Charcoal Face Wash",
		Brand:    "Terra",
		Price:    11.00,
		Category: model.CategorySkincare,
		Stock:    10,
	}
	testDB.Create(product)

	return inventoryService, testDB, admin, product
}

func TestInventoryService_AdjustStock_Restock(t *testing.T) {
	inventoryService, testDB, admin, product := setupInventoryServiceTest(t)

	log, err := inventoryService.AdjustStock(admin.ID, product.ID, 25, "weekly delivery")
	require.NoError(t, err)

	assert.Equal(t, model.InventoryChangeRestock, log.ChangeType)
	assert.Equal(t, 25, log.QuantityChange)
	assert.Equal(t, 10, log.StockBefore)
	assert.Equal(t, 35, log.StockAfter)
	assert.Equal(t, "weekly delivery", log.Note)
	require.NotNil(t, log.UserID)
	assert.Equal(t, admin.ID, *log.UserID)

	var refreshed model.Product
	require.NoError(t, testDB.First(&refreshed, product.ID).Error)
	assert.Equal(t, 35, refreshed.Stock)
}

func TestInventoryService_AdjustStock_NegativeAdjustment(t *testing.T) {
	inventoryService, testDB, admin, product := setupInventoryServiceTest(t)

	log, err := inventoryService.AdjustStock(admin.ID, product.ID, -4, "damaged in storage")
	require.NoError(t, err)

	assert.Equal(t, model.InventoryChangeAdjustment, log.ChangeType)
	assert.Equal(t, -4, log.QuantityChange)
	assert.Equal(t, 6, log.StockAfter)

	var refreshed model.Product
	require.NoError(t, testDB.First(&refreshed, product.ID).Error)
	assert.Equal(t, 6, refreshed.Stock)
}

func TestInventoryService_AdjustStock_WouldGoNegative(t *testing.T) {
	inventoryService, testDB, admin, product := setupInventoryServiceTest(t)

	_, err := inventoryService.AdjustStock(admin.ID, product.ID, -11, "stocktake")
	assert.ErrorIs(t, err, ErrStockWouldGoNegative)

	// Rejected adjustments leave no trace.
	var refreshed model.Product
	require.NoError(t, testDB.First(&refreshed, product.ID).Error)
	assert.Equal(t, 10, refreshed.Stock)

	var logCount int64
	testDB.Model(&model.InventoryLog{}).Count(&logCount)
	assert.Zero(t, logCount)

	// Draining to exactly zero is allowed.
	log, err := inventoryService.AdjustStock(admin.ID, product.ID, -10, "stocktake")
	require.NoError(t, err)
	assert.Zero(t, log.StockAfter)
}

func TestInventoryService_AdjustStock_ZeroDelta(t *testing.T) {
	inventoryService, _, admin, product := setupInventoryServiceTest(t)

	_, err := inventoryService.AdjustStock(admin.ID, product.ID, 0, "noop")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestInventoryService_AdjustStock_ProductNotFound(t *testing.T) {
	inventoryService, _, admin, _ := setupInventoryServiceTest(t)

	_, err := inventoryService.AdjustStock(admin.ID, 9999, 5, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestInventoryService_GetProductHistory(t *testing.T) {
	inventoryService, _, admin, product := setupInventoryServiceTest(t)

	_, err := inventoryService.AdjustStock(admin.ID, product.ID, 5, "first")
	require.NoError(t, err)
	_, err = inventoryService.AdjustStock(admin.ID, product.ID, -2, "second")
	require.NoError(t, err)
	_, err = inventoryService.AdjustStock(admin.ID, product.ID, 8, "third")
	require.NoError(t, err)

	logs, err := inventoryService.GetProductHistory(product.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	// Newest first.
	assert.Equal(t, "third", logs[0].Note)
	assert.Equal(t, "first", logs[2].Note)

	logs, err = inventoryService.GetProductHistory(product.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "first", logs[0].Note)
}

func TestInventoryService_GetLowStockProducts(t *testing.T) {
	inventoryService, testDB, _, _ := setupInventoryServiceTest(t)

	low := &model.Product{
		Name:     "Jojoba Serum",
		Brand:    "Terra",
		Price:    22.00,
		Category: model.CategorySkincare,
		Stock:    3,
	}
	testDB.Create(low)

	atThreshold := &model.Product{
		Name:     "Cotton Rounds",
		Brand:    "Terra",
		Price:    6.00,
		Category: model.CategoryBodycare,
		Stock:    5,
	}
	testDB.Create(atThreshold)

	// Threshold is inclusive and results come lowest stock first. The
	// product seeded with stock 10 is not reported.
	products, err := inventoryService.GetLowStockProducts()
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, low.ID, products[0].ID)
	assert.Equal(t, atThreshold.ID, products[1].ID)
}
