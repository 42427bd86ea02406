package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/verdana/verdana-backend/internal/app/service"
	apperrors "github.com/verdana/verdana-backend/internal/errors"
	"github.com/verdana/verdana-backend/internal/middleware"
)

type InventoryController struct {
	inventoryService service.InventoryService
}

func NewInventoryController(inventoryService service.InventoryService) *InventoryController {
	return &InventoryController{
		inventoryService: inventoryService,
	}
}

type AdjustStockRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Delta     int    `json:"delta" binding:"required"`
	Note      string `json:"note"`
}

// AdjustStock applies a manual stock change (admin)
// POST /api/v1/inventory/adjust
func (ctrl *InventoryController) AdjustStock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	entry, err := ctrl.inventoryService.AdjustStock(adminID, req.ProductID, req.Delta, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.InventoryInvalidDelta, "Delta must be non-zero")
		case errors.Is(err, service.ErrStockWouldGoNegative):
			apperrors.Conflict(c, apperrors.InventoryNegative, "Adjustment would make stock negative")
		default:
			log.Error("Failed to adjust stock", err, map[string]interface{}{
				"product_id": req.ProductID,
			})
			apperrors.InternalError(c, "Failed to adjust stock")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"log": entry,
	})
}

// GetProductHistory returns a product's inventory log (admin)
// GET /api/v1/inventory/:product_id/logs
func (ctrl *InventoryController) GetProductHistory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	limit := 50
	offset := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	logs, err := ctrl.inventoryService.GetProductHistory(uint(productID), limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch inventory history", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "Failed to fetch inventory history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetLowStock lists products at or below the restock threshold (admin)
// GET /api/v1/inventory/low-stock
func (ctrl *InventoryController) GetLowStock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.inventoryService.GetLowStockProducts()
	if err != nil {
		log.Error("Failed to fetch low stock products", err, nil)
		apperrors.InternalError(c, "Failed to fetch low stock products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}
