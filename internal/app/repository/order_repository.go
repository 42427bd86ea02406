package repository

import (
	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/pkg/logger"
	"gorm.io/gorm"
)

// SustainabilityTotals is the order-side slice of the dashboard rollup.
type SustainabilityTotals struct {
	TreesPlanted   int64
	CO2Offset      float64
	HappyCustomers int64
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	Update(order *model.Order) error
	UpdateStatus(id uint, status model.OrderStatus) error
	UpdatePaymentStatus(id uint, status model.PaymentStatus) error
	// SumSustainability aggregates impact figures over non-cancelled
	// orders; userID == 0 means all users.
	SumSustainability(userID uint) (*SustainabilityTotals, error)
	CountByStatus(status model.OrderStatus) (int64, error)
	CountNonCancelledByUser(userID uint) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Product")
	})
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		logger.Error("Failed to update order status in database", err, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return err
	}
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(id uint, status model.PaymentStatus) error {
	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("payment_status", status).Error; err != nil {
		logger.Error("Failed to update order payment status in database", err, map[string]interface{}{
			"order_id":       id,
			"payment_status": status,
		})
		return err
	}
	return nil
}

func (r *orderRepository) SumSustainability(userID uint) (*SustainabilityTotals, error) {
	base := r.db.Model(&model.Order{}).
		Where("status <> ?", model.OrderStatusCancelled)
	if userID != 0 {
		base = base.Where("user_id = ?", userID)
	}

	var sums struct {
		Trees int64
		CO2   float64
	}
	err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(trees_planted), 0) as trees, COALESCE(SUM(co2_offset), 0) as co2").
		Scan(&sums).Error
	if err != nil {
		logger.Error("Failed to sum order sustainability figures in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var happy int64
	err = r.db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusDelivered).
		Distinct("user_id").
		Count(&happy).Error
	if err != nil {
		logger.Error("Failed to count delivered-order customers in database", err)
		return nil, err
	}

	return &SustainabilityTotals{
		TreesPlanted:   sums.Trees,
		CO2Offset:      sums.CO2,
		HappyCustomers: happy,
	}, nil
}

func (r *orderRepository) CountByStatus(status model.OrderStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) CountNonCancelledByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("user_id = ? AND status <> ?", userID, model.OrderStatusCancelled).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
