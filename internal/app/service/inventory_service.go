package service

import (
	"errors"

	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrStockWouldGoNegative = errors.New("adjustment would make stock negative")

type InventoryService interface {
	AdjustStock(adminID, productID uint, delta int, note string) (*model.InventoryLog, error)
	GetProductHistory(productID uint, limit, offset int) ([]model.InventoryLog, error)
	GetLowStockProducts() ([]model.Product, error)
}

type inventoryService struct {
	db                *gorm.DB
	productRepo       repository.ProductRepository
	inventoryLogRepo  repository.InventoryLogRepository
	lowStockThreshold int
}

func NewInventoryService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	inventoryLogRepo repository.InventoryLogRepository,
	lowStockThreshold int,
) InventoryService {
	return &inventoryService{
		db:                db,
		productRepo:       productRepo,
		inventoryLogRepo:  inventoryLogRepo,
		lowStockThreshold: lowStockThreshold,
	}
}

// AdjustStock applies a signed delta to a product's stock and appends a
// log entry, inside one transaction. The update is conditional on the
// resulting stock staying non-negative, so a concurrent sale cannot
// push a negative adjustment below zero.
func (s *inventoryService) AdjustStock(adminID, productID uint, delta int, note string) (*model.InventoryLog, error) {
	if delta == 0 {
		return nil, ErrInvalidQuantity
	}

	changeType := model.InventoryChangeRestock
	if delta < 0 {
		changeType = model.InventoryChangeAdjustment
	}

	var entry model.InventoryLog
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		result := tx.Model(&model.Product{}).
			Where("id = ? AND stock + ? >= 0", productID, delta).
			Update("stock", gorm.Expr("stock + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStockWouldGoNegative
		}

		// StockBefore is re-read under the conditional update's result
		// rather than the earlier snapshot to keep the log consistent.
		var after model.Product
		if err := tx.First(&after, productID).Error; err != nil {
			return err
		}

		entry = model.InventoryLog{
			ProductID:      productID,
			UserID:         &adminID,
			ChangeType:     changeType,
			QuantityChange: delta,
			StockBefore:    after.Stock - delta,
			StockAfter:     after.Stock,
			Note:           note,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		if errors.Is(err, ErrStockWouldGoNegative) {
			logger.Warn("Stock adjustment rejected", map[string]interface{}{
				"product_id": productID,
				"delta":      delta,
			})
		} else if !errors.Is(err, ErrProductNotFound) {
			logger.Error("Stock adjustment failed", err, map[string]interface{}{
				"product_id": productID,
			})
		}
		return nil, err
	}

	logger.Info("Stock adjusted", map[string]interface{}{
		"product_id":  productID,
		"admin_id":    adminID,
		"delta":       delta,
		"stock_after": entry.StockAfter,
	})
	return &entry, nil
}

func (s *inventoryService) GetProductHistory(productID uint, limit, offset int) ([]model.InventoryLog, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	logs, err := s.inventoryLogRepo.FindByProductID(productID, limit, offset)
	if err != nil {
		logger.Error("Failed to fetch inventory history", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return logs, nil
}

func (s *inventoryService) GetLowStockProducts() ([]model.Product, error) {
	products, err := s.productRepo.FindBelowStock(s.lowStockThreshold)
	if err != nil {
		logger.Error("Failed to fetch low stock products", err)
		return nil, err
	}
	return products, nil
}
