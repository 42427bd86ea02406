package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/verdana/verdana-backend/config"
	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInvalidShippingMethod   = errors.New("invalid shipping method")
)

// StockConflictError reports a checkout that raced with another buyer:
// the cart quantity passed validation earlier but exceeds what is left
// at commit time. The whole transaction rolls back.
type StockConflictError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.ProductName, e.Requested, e.Available)
}

// Flat per-method shipping rates. Carbon-neutral carries a small premium
// over standard which funds the offset program.
var shippingRates = map[model.ShippingMethod]float64{
	model.ShippingStandard:      3.00,
	model.ShippingExpress:       8.00,
	model.ShippingCarbonNeutral: 5.00,
}

// OrderNotifier pushes order lifecycle events to the order's owner.
// The websocket hub implements it; a nil notifier disables pushes.
type OrderNotifier interface {
	NotifyOrderStatus(userID uint, orderID uint, orderNumber string, status model.OrderStatus)
}

type OrderService interface {
	CreateOrderFromCart(userID uint, shippingAddress string, method model.ShippingMethod) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint, isAdmin bool) (*model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
}

type orderService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	policy    config.SustainabilityConfig
	notifier  OrderNotifier
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	policy config.SustainabilityConfig,
	notifier OrderNotifier,
) OrderService {
	return &orderService{
		db:        db,
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		policy:    policy,
		notifier:  notifier,
	}
}

// CreateOrderFromCart turns the user's cart into a pending order in one
// transaction. Every product row is locked FOR UPDATE and its stock
// re-validated under the lock, so concurrent checkouts for the last
// units serialize and exactly one succeeds. Nothing commits on failure:
// stock, cart, and inventory logs are untouched.
func (s *orderService) CreateOrderFromCart(userID uint, shippingAddress string, method model.ShippingMethod) (*model.Order, error) {
	shippingCost, ok := shippingRates[method]
	if !ok {
		return nil, ErrInvalidShippingMethod
	}

	logger.Info("Starting checkout", map[string]interface{}{
		"user_id":         userID,
		"shipping_method": method,
	})

	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to load cart for checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	var orderID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		order := model.Order{
			OrderNumber:     uuid.New().String(),
			UserID:          userID,
			Status:          model.OrderStatusPending,
			PaymentStatus:   model.PaymentStatusPending,
			ShippingMethod:  method,
			ShippingCost:    shippingCost,
			ShippingAddress: shippingAddress,
		}

		var subtotal float64
		items := make([]model.OrderItem, 0, len(cartItems))
		logs := make([]model.InventoryLog, 0, len(cartItems))

		for _, cartItem := range cartItems {
			var product model.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, cartItem.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}

			if product.Stock < cartItem.Quantity {
				return &StockConflictError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   cartItem.Quantity,
					Available:   product.Stock,
				}
			}

			if err := tx.Model(&model.Product{}).
				Where("id = ?", product.ID).
				Update("stock", gorm.Expr("stock - ?", cartItem.Quantity)).Error; err != nil {
				return err
			}

			// The price is frozen here; later catalog edits do not
			// change what this order charged.
			items = append(items, model.OrderItem{
				ProductID:       product.ID,
				Quantity:        cartItem.Quantity,
				PriceAtPurchase: product.Price,
			})
			subtotal += product.Price * float64(cartItem.Quantity)

			logs = append(logs, model.InventoryLog{
				ProductID:      product.ID,
				UserID:         &userID,
				ChangeType:     model.InventoryChangeSale,
				QuantityChange: -cartItem.Quantity,
				StockBefore:    product.Stock,
				StockAfter:     product.Stock - cartItem.Quantity,
			})
		}

		order.Subtotal = subtotal
		order.Total = subtotal + shippingCost
		order.TreesPlanted = int(math.Floor(order.Total/s.policy.TreesPerAmount)) + 1
		order.CO2Offset = float64(order.TreesPlanted) * s.policy.CO2PerTree
		order.OrderItems = items

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i := range logs {
			logs[i].OrderID = &order.ID
			logs[i].Note = fmt.Sprintf("order %s", order.OrderNumber)
		}
		if err := tx.Create(&logs).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).
			Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		var conflict *StockConflictError
		if errors.As(err, &conflict) {
			logger.Warn("Checkout aborted on stock conflict", map[string]interface{}{
				"user_id":    userID,
				"product_id": conflict.ProductID,
				"requested":  conflict.Requested,
				"available":  conflict.Available,
			})
		} else if !errors.Is(err, ErrEmptyCart) {
			logger.Error("Checkout transaction failed", err, map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, err
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	logger.Info("Order created", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
		"trees":        order.TreesPlanted,
	})
	return order, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrderByID(userID, orderID uint, isAdmin bool) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// Non-owners get not found rather than forbidden so order ids leak
	// nothing.
	if !isAdmin && order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !model.ValidStatusTransition(order.Status, status) {
		logger.Warn("Rejected order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidStatusTransition
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	order.Status = status

	logger.Info("Order status updated", map[string]interface{}{
		"order_id":     orderID,
		"order_number": order.OrderNumber,
		"status":       status,
	})

	if s.notifier != nil {
		s.notifier.NotifyOrderStatus(order.UserID, order.ID, order.OrderNumber, status)
	}
	return order, nil
}
