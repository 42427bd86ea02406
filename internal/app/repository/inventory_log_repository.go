package repository

import (
	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/pkg/logger"
	"gorm.io/gorm"
)

// InventoryLogRepository persists the append-only stock audit trail.
// There is intentionally no Update or Delete.
type InventoryLogRepository interface {
	Create(log *model.InventoryLog) error
	FindByProductID(productID uint, limit, offset int) ([]model.InventoryLog, error)
	FindAll(limit, offset int) ([]model.InventoryLog, error)
}

type inventoryLogRepository struct {
	db *gorm.DB
}

func NewInventoryLogRepository(db *gorm.DB) InventoryLogRepository {
	return &inventoryLogRepository{db: db}
}

func (r *inventoryLogRepository) Create(entry *model.InventoryLog) error {
	logger.Debug("Appending inventory log entry in database", map[string]interface{}{
		"product_id":      entry.ProductID,
		"change_type":     entry.ChangeType,
		"quantity_change": entry.QuantityChange,
	})

	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to append inventory log entry in database", err, map[string]interface{}{
			"product_id": entry.ProductID,
		})
		return err
	}
	return nil
}

func (r *inventoryLogRepository) FindByProductID(productID uint, limit, offset int) ([]model.InventoryLog, error) {
	var entries []model.InventoryLog
	query := r.db.Where("product_id = ?", productID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		logger.Error("Failed to find inventory log entries in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return entries, nil
}

func (r *inventoryLogRepository) FindAll(limit, offset int) ([]model.InventoryLog, error) {
	var entries []model.InventoryLog
	query := r.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		logger.Error("Failed to list inventory log entries in database", err)
		return nil, err
	}
	return entries, nil
}
