package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string
type ShippingMethod string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"

	ShippingStandard      ShippingMethod = "standard"
	ShippingExpress       ShippingMethod = "express"
	ShippingCarbonNeutral ShippingMethod = "carbon_neutral"
)

// ValidStatusTransition reports whether an order may move from one status to
// another. Forward progress only: pending → processing → shipped → delivered,
// with cancellation allowed while the order has not shipped.
func ValidStatusTransition(from, to OrderStatus) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusProcessing || to == OrderStatusCancelled
	case OrderStatusProcessing:
		return to == OrderStatusShipped || to == OrderStatusCancelled
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	default:
		return false
	}
}

type Order struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	OrderNumber string `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	// Monetary figures are frozen at checkout and never recalculated:
	// Total == Subtotal + ShippingCost.
	Subtotal        float64        `gorm:"not null" json:"subtotal"`
	ShippingCost    float64        `gorm:"not null" json:"shipping_cost"`
	Total           float64        `gorm:"not null" json:"total"`
	Status          OrderStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	ShippingMethod  ShippingMethod `gorm:"type:varchar(20);default:'standard'" json:"shipping_method"`
	ShippingAddress string         `gorm:"type:text" json:"shipping_address"`
	// Sustainability figures computed from config policy at checkout,
	// frozen like the monetary ones.
	TreesPlanted int            `gorm:"not null;default:0" json:"trees_planted"`
	CO2Offset    float64        `gorm:"not null;default:0" json:"co2_offset"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint `gorm:"primarykey" json:"id"`
	OrderID   uint `gorm:"not null;index" json:"order_id"`
	ProductID uint `gorm:"not null;index" json:"product_id"`
	Quantity  int  `gorm:"not null" json:"quantity"`
	// Unit price captured at checkout; later catalog price changes
	// never affect past orders.
	PriceAtPurchase float64        `gorm:"not null" json:"price_at_purchase"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
