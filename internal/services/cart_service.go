// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/utils"
)

// CartService keeps per-user carts. Cart quantities are wishes, not
// reservations; stock is only checked and reserved at order creation.
type CartService struct {
	db *gorm.DB
}

type AddCartItemRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	SKUID     *uuid.UUID `json:"sku_id,omitempty"`
	Quantity  int        `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartSummary struct {
	Items       []models.CartItem `json:"items"`
	TotalAmount float64           `json:"total_amount"`
	ItemCount   int               `json:"item_count"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// AddItem merges into an existing line for the same product and SKU instead
// of creating duplicates.
func (s *CartService) AddItem(userID uuid.UUID, req *AddCartItemRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if product.Status != models.ProductStatusOnSale {
		return nil, ErrProductNotFound
	}

	if req.SKUID != nil {
		var sku models.ProductSKU
		if err := s.db.First(&sku, "id = ? AND product_id = ?", *req.SKUID, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSKUNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	query := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID)
	if req.SKUID != nil {
		query = query.Where("sku_id = ?", *req.SKUID)
	} else {
		query = query.Where("sku_id IS NULL")
	}

	var item models.CartItem
	err := query.First(&item).Error
	switch {
	case err == nil:
		if err := s.db.Model(&item).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", req.Quantity)).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
		item.Quantity += req.Quantity
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			SKUID:     req.SKUID,
			Quantity:  req.Quantity,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("database error: %w", err)
	}

	s.db.Preload("Product").Preload("SKU").First(&item, "id = ?", item.ID)
	return &item, nil
}

func (s *CartService) UpdateItem(userID, itemID uuid.UUID, req *UpdateCartItemRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var item models.CartItem
	if err := s.db.First(&item, "id = ? AND user_id = ?", itemID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&item).UpdateColumn("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	item.Quantity = req.Quantity

	s.db.Preload("Product").Preload("SKU").First(&item, "id = ?", item.ID)
	return &item, nil
}

func (s *CartService) RemoveItem(userID, itemID uuid.UUID) error {
	res := s.db.Delete(&models.CartItem{}, "id = ? AND user_id = ?", itemID, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *CartService) ClearCart(userID uuid.UUID) error {
	if err := s.db.Delete(&models.CartItem{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) GetCart(userID uuid.UUID) (*CartSummary, error) {
	var items []models.CartItem
	if err := s.db.Preload("Product").Preload("SKU").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}

	total := decimal.Zero
	count := 0
	for _, item := range items {
		price := item.Product.Price
		if item.SKU != nil && item.SKU.Price > 0 {
			price = item.SKU.Price
		}
		total = total.Add(decimal.NewFromFloat(utils.LineTotal(item.Quantity, price)))
		count += item.Quantity
	}

	totalAmount, _ := total.Round(2).Float64()
	return &CartSummary{
		Items:       items,
		TotalAmount: totalAmount,
		ItemCount:   count,
	}, nil
}
