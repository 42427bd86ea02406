package service

import (
	"errors"

	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartSummary is a cart read model: the items plus the subtotal at
// current catalog prices. Prices are not frozen until checkout.
type CartSummary struct {
	Items    []model.CartItem `json:"items"`
	Subtotal float64          `json:"subtotal"`
	Count    int              `json:"count"`
}

type CartService interface {
	GetUserCart(userID uint) (*CartSummary, error)
	AddToCart(userID, productID uint, quantity int) (*model.CartItem, error)
	UpdateCartItem(userID, itemID uint, quantity int) (*model.CartItem, error)
	RemoveFromCart(userID, itemID uint) error
	ClearCart(userID uint) (int64, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetUserCart(userID uint) (*CartSummary, error) {
	items, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	summary := &CartSummary{
		Items: items,
		Count: len(items),
	}
	for _, item := range items {
		summary.Subtotal += item.Product.Price * float64(item.Quantity)
	}
	return summary, nil
}

func (s *cartService) AddToCart(userID, productID uint, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	logger.Debug("Adding product to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing, err := s.cartRepo.FindByUserAndProduct(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Adding a product already in the cart merges quantities into the
	// existing line instead of creating a duplicate row.
	requested := quantity
	if existing != nil {
		requested += existing.Quantity
	}

	if product.Stock < requested {
		logger.Warn("Insufficient stock for cart add", map[string]interface{}{
			"product_id": productID,
			"stock":      product.Stock,
			"requested":  requested,
		})
		return nil, ErrInsufficientStock
	}

	if existing != nil {
		existing.Quantity = requested
		if err := s.cartRepo.Update(existing); err != nil {
			logger.Error("Failed to update cart item", err, map[string]interface{}{
				"cart_item_id": existing.ID,
			})
			return nil, err
		}
		existing.Product = *product
		return existing, nil
	}

	item := &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Create(item); err != nil {
		logger.Error("Failed to create cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}
	item.Product = *product

	logger.Info("Product added to cart", map[string]interface{}{
		"user_id":      userID,
		"product_id":   productID,
		"cart_item_id": item.ID,
	})
	return item, nil
}

func (s *cartService) UpdateCartItem(userID, itemID uint, quantity int) (*model.CartItem, error) {
	item, err := s.cartRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	// Ownership mismatches read as not found so item ids are not probeable.
	if item.UserID != userID {
		return nil, ErrCartItemNotFound
	}

	// A quantity below one means the line should go away.
	if quantity < 1 {
		if err := s.cartRepo.Delete(itemID); err != nil {
			return nil, err
		}
		logger.Info("Cart item removed via zero quantity", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
		})
		return nil, nil
	}

	product, err := s.productRepo.FindByID(item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	item.Quantity = quantity
	if err := s.cartRepo.Update(item); err != nil {
		logger.Error("Failed to update cart item quantity", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return nil, err
	}
	item.Product = *product
	return item, nil
}

func (s *cartService) RemoveFromCart(userID, itemID uint) error {
	item, err := s.cartRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Removing an absent item is a no-op.
			return nil
		}
		return err
	}
	if item.UserID != userID {
		return ErrCartItemNotFound
	}

	if err := s.cartRepo.Delete(itemID); err != nil {
		logger.Error("Failed to remove cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return err
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})
	return nil
}

func (s *cartService) ClearCart(userID uint) (int64, error) {
	removed, err := s.cartRepo.DeleteByUserID(userID)
	if err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
		"removed": removed,
	})
	return removed, nil
}
