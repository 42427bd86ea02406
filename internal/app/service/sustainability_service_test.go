package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/internal/db"
	"gorm.io/gorm"
)

func setupSustainabilityServiceTest(t *testing.T) (SustainabilityService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	return NewSustainabilityService(orderRepo, productRepo, testPolicy()), testDB
}

func seedImpactUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "hash", Name: "Customer", Role: model.RoleCustomer}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func seedImpactOrder(t *testing.T, testDB *gorm.DB, userID uint, status model.OrderStatus, trees int, co2 float64) {
	t.Helper()
	order := &model.Order{
		OrderNumber:     fmt.Sprintf("VD-%d-%s-%d", userID, status, trees),
		UserID:          userID,
		Subtotal:        40.00,
		ShippingCost:    3.00,
		Total:           43.00,
		Status:          status,
		ShippingMethod:  model.ShippingStandard,
		ShippingAddress: "12 Fern Lane",
		TreesPlanted:    trees,
		CO2Offset:       co2,
	}
	require.NoError(t, testDB.Create(order).Error)
}

func TestSustainabilityService_GetStats(t *testing.T) {
	sustainabilityService, testDB := setupSustainabilityServiceTest(t)

	alice := seedImpactUser(t, testDB, "alice@example.com")
	bob := seedImpactUser(t, testDB, "bob@example.com")

	seedImpactOrder(t, testDB, alice.ID, model.OrderStatusDelivered, 2, 1.2)
	seedImpactOrder(t, testDB, alice.ID, model.OrderStatusDelivered, 1, 0.6)
	seedImpactOrder(t, testDB, bob.ID, model.OrderStatusPending, 3, 1.8)
	// Cancelled orders contribute nothing.
	seedImpactOrder(t, testDB, bob.ID, model.OrderStatusCancelled, 4, 2.4)

	testDB.Create(&model.Product{Name: "Oat Cleanser", Brand: "Terra", Price: 10, Category: model.CategorySkincare, SustainabilityScore: 90})
	testDB.Create(&model.Product{Name: "Rose Mist", Brand: "Terra", Price: 12, Category: model.CategorySkincare, SustainabilityScore: 70})
	testDB.Create(&model.Product{Name: "Glitter Palette", Brand: "Terra", Price: 18, Category: model.CategoryMakeup, SustainabilityScore: 40})
	testDB.Create(&model.Product{Name: "Clay Mask", Brand: "Terra", Price: 15, Category: model.CategorySkincare, SustainabilityScore: 10})

	stats, err := sustainabilityService.GetStats()
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TreesPlanted)
	assert.InDelta(t, 3.6, stats.CO2OffsetKg, 0.001)
	// Two users ordered but only alice has a delivered order.
	assert.Equal(t, int64(1), stats.HappyCustomers)
	// Threshold 70 is inclusive: 2 of 4 products qualify.
	assert.InDelta(t, 50.0, stats.SustainablePackagingPct, 0.001)
}

func TestSustainabilityService_GetStats_EmptyDatabase(t *testing.T) {
	sustainabilityService, _ := setupSustainabilityServiceTest(t)

	stats, err := sustainabilityService.GetStats()
	require.NoError(t, err)

	assert.Zero(t, stats.TreesPlanted)
	assert.Zero(t, stats.CO2OffsetKg)
	assert.Zero(t, stats.HappyCustomers)
	assert.Zero(t, stats.SustainablePackagingPct)
}

func TestSustainabilityService_GetUserImpact(t *testing.T) {
	sustainabilityService, testDB := setupSustainabilityServiceTest(t)

	alice := seedImpactUser(t, testDB, "alice@example.com")
	bob := seedImpactUser(t, testDB, "bob@example.com")

	seedImpactOrder(t, testDB, alice.ID, model.OrderStatusDelivered, 2, 1.2)
	seedImpactOrder(t, testDB, alice.ID, model.OrderStatusPending, 1, 0.6)
	seedImpactOrder(t, testDB, alice.ID, model.OrderStatusCancelled, 5, 3.0)
	seedImpactOrder(t, testDB, bob.ID, model.OrderStatusDelivered, 7, 4.2)

	impact, err := sustainabilityService.GetUserImpact(alice.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, impact.TreesPlanted)
	assert.InDelta(t, 1.8, impact.CO2OffsetKg, 0.001)
	assert.Equal(t, int64(2), impact.OrderCount)
}
