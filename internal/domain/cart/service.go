// internal/domain/cart/service.go
package cart

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/domain/product"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// GetOrCreateCart returns the user's cart with items and products loaded,
// creating an empty cart when none exists yet.
func (s *Service) GetOrCreateCart(userID uint) (*Cart, error) {
	var cart Cart
	err := s.db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	cart = Cart{ID: uuid.New(), UserID: userID}
	if err := s.db.Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

// AddItemRequest represents add-to-cart data
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// AddItem adds a product to the user's cart, merging with an existing line
// for the same product. The combined quantity is validated against stock
// so repeated adds cannot exceed what's available.
func (s *Service) AddItem(userID uint, req *AddItemRequest) (*Cart, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, apperror.New(apperror.KindValidation, "quantity must be positive")
	}

	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	var prod product.Product
	if err := s.db.First(&prod, req.ProductID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "product %d not found", req.ProductID)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	var item CartItem
	err = s.db.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&item).Error
	switch err {
	case nil:
		combined := item.Quantity + quantity
		if err := checkStock(&prod, combined); err != nil {
			return nil, err
		}
		item.Quantity = combined
		if err := s.db.Save(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	case gorm.ErrRecordNotFound:
		if err := checkStock(&prod, quantity); err != nil {
			return nil, err
		}
		item = CartItem{CartID: cart.ID, ProductID: req.ProductID, Quantity: quantity}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up cart item: %w", err)
	}

	return s.GetOrCreateCart(userID)
}

// UpdateItemRequest represents a cart line quantity change
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// UpdateItem sets a cart line's quantity. A quantity of zero removes the
// line.
func (s *Service) UpdateItem(userID uint, itemID uint, req *UpdateItemRequest) (*Cart, error) {
	if req.Quantity < 0 {
		return nil, apperror.New(apperror.KindValidation, "quantity cannot be negative")
	}

	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	var item CartItem
	if err := s.db.Preload("Product").
		Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "cart item %d not found", itemID)
		}
		return nil, fmt.Errorf("failed to retrieve cart item: %w", err)
	}

	if req.Quantity == 0 {
		if err := s.db.Delete(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		return s.GetOrCreateCart(userID)
	}

	if err := checkStock(&item.Product, req.Quantity); err != nil {
		return nil, err
	}

	item.Quantity = req.Quantity
	if err := s.db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return s.GetOrCreateCart(userID)
}

// RemoveItem removes a cart line
func (s *Service) RemoveItem(userID uint, itemID uint) (*Cart, error) {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	result := s.db.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.Newf(apperror.KindNotFound, "cart item %d not found", itemID)
	}
	return s.GetOrCreateCart(userID)
}

// ClearCart deletes the user's cart and its items, then recreates an empty
// cart so the user always has one.
func (s *Service) ClearCart(userID uint) (*Cart, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil // nothing to clear
			}
			return fmt.Errorf("failed to retrieve cart: %w", err)
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		if err := tx.Delete(&cart).Error; err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrCreateCart(userID)
}

// DeleteCartTx removes the cart and its lines inside the caller's
// transaction. Used when an order is placed from the cart. The cart row
// delete doubles as the checkout guard: when another placement already
// consumed this cart, zero rows are affected and the caller's
// transaction must abort instead of producing a second order.
func (s *Service) DeleteCartTx(tx *gorm.DB, cartID uuid.UUID) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	result := tx.Delete(&Cart{}, "id = ?", cartID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete cart: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.KindStateConflict, "cart was already checked out")
	}
	return nil
}

func checkStock(prod *product.Product, quantity int) error {
	if !prod.TrackStock {
		return nil
	}
	if prod.Stock < quantity {
		return apperror.Newf(apperror.KindInsufficientStock,
			"not enough stock for %s: %d requested, %d available", prod.Name, quantity, prod.Stock)
	}
	return nil
}
