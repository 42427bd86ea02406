package model

import "time"

type InventoryChangeType string

const (
	InventoryChangeRestock    InventoryChangeType = "restock"
	InventoryChangeAdjustment InventoryChangeType = "adjustment"
	InventoryChangeSale       InventoryChangeType = "sale"
)

// InventoryLog is an append-only record of a stock delta. Rows are written
// inside the same transaction as the stock change itself and never updated
// or deleted afterwards, so the log replays to the current stock level.
type InventoryLog struct {
	ID        uint                `gorm:"primarykey" json:"id"`
	ProductID uint                `gorm:"not null;index" json:"product_id"`
	// Acting user, when the change was user-initiated (admin adjustment,
	// customer sale). Nil for system-initiated changes.
	UserID     *uint               `gorm:"index" json:"user_id,omitempty"`
	ChangeType InventoryChangeType `gorm:"type:varchar(20);not null" json:"change_type"`
	// Signed delta applied to Product.Stock; negative for sales.
	QuantityChange int    `gorm:"not null" json:"quantity_change"`
	StockBefore    int    `gorm:"not null" json:"stock_before"`
	StockAfter     int    `gorm:"not null" json:"stock_after"`
	Note           string `gorm:"type:text" json:"note,omitempty"`
	// Order that triggered a sale entry, if any.
	OrderID   *uint     `gorm:"index" json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (InventoryLog) TableName() string {
	return "inventory_logs"
}
