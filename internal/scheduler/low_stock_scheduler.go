package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/verdana/verdana-backend/internal/app/service"
	"github.com/verdana/verdana-backend/pkg/logger"
)

// LowStockScheduler runs the daily low-stock sweep so operations can
// restock before products sell out.
type LowStockScheduler struct {
	cron             *cron.Cron
	inventoryService service.InventoryService
}

func NewLowStockScheduler(inventoryService service.InventoryService) *LowStockScheduler {
	return &LowStockScheduler{
		cron:             cron.New(),
		inventoryService: inventoryService,
	}
}

// Start registers the daily 7:00 AM sweep.
func (s *LowStockScheduler) Start() error {
	_, err := s.cron.AddFunc("0 7 * * *", func() {
		logger.Info("Starting scheduled low stock sweep", nil)

		products, err := s.inventoryService.GetLowStockProducts()
		if err != nil {
			logger.Error("Low stock sweep failed", err)
			return
		}

		if len(products) == 0 {
			logger.Info("Low stock sweep: all products sufficiently stocked", nil)
			return
		}

		for _, product := range products {
			logger.Warn("Product running low on stock", map[string]interface{}{
				"product_id": product.ID,
				"name":       product.Name,
				"stock":      product.Stock,
			})
		}

		logger.Info("Low stock sweep completed", map[string]interface{}{
			"low_stock_count": len(products),
		})
	})
	if err != nil {
		logger.Error("Failed to add cron job for low stock sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Low stock scheduler started (daily at 7:00 AM)", nil)
	return nil
}

// Stop halts the scheduler.
func (s *LowStockScheduler) Stop() {
	logger.Info("Stopping low stock scheduler...", nil)
	s.cron.Stop()
	logger.Info("Low stock scheduler stopped", nil)
}
