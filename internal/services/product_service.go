// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type ProductSKURequest struct {
	Code     string                 `json:"code" validate:"required,max=100"`
	Price    float64                `json:"price" validate:"amount"`
	Stock    int                    `json:"stock" validate:"min=0"`
	SpecData map[string]interface{} `json:"spec_data,omitempty"`
}

type ProductImageRequest struct {
	URL       string `json:"url" validate:"required,max=512"`
	IsPrimary bool   `json:"is_primary"`
	SortOrder int    `json:"sort_order"`
}

type ProductSpecRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Value     string `json:"value" validate:"max=255"`
	SortOrder int    `json:"sort_order"`
}

type ProductAttributeRequest struct {
	AttributeID uuid.UUID `json:"attribute_id" validate:"required"`
	Value       string    `json:"value" validate:"required,max=255"`
}

type CreateProductRequest struct {
	CategoryID    uuid.UUID                 `json:"category_id" validate:"required"`
	Name          string                    `json:"name" validate:"required,min=2,max=255"`
	Subtitle      string                    `json:"subtitle,omitempty"`
	Description   string                    `json:"description,omitempty"`
	SKUCode       string                    `json:"sku_code" validate:"required,max=100"`
	Price         float64                   `json:"price" validate:"required,gt=0,amount"`
	OriginalPrice float64                   `json:"original_price" validate:"amount"`
	CostPrice     float64                   `json:"cost_price" validate:"amount"`
	Stock         int                       `json:"stock" validate:"min=0"`
	Weight        float64                   `json:"weight,omitempty"`
	IsFeatured    bool                      `json:"is_featured"`
	IsNew         bool                      `json:"is_new"`
	IsHot         bool                      `json:"is_hot"`
	SKUs          []ProductSKURequest       `json:"skus,omitempty" validate:"omitempty,dive"`
	Images        []ProductImageRequest     `json:"images,omitempty" validate:"omitempty,dive"`
	Specs         []ProductSpecRequest      `json:"specs,omitempty" validate:"omitempty,dive"`
	Attributes    []ProductAttributeRequest `json:"attributes,omitempty" validate:"omitempty,dive"`
	TagIDs        []uuid.UUID               `json:"tag_ids,omitempty"`
}

type UpdateProductRequest struct {
	CategoryID    *uuid.UUID            `json:"category_id,omitempty"`
	Name          string                `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Subtitle      *string               `json:"subtitle,omitempty"`
	Description   *string               `json:"description,omitempty"`
	Price         *float64              `json:"price,omitempty" validate:"omitempty,gt=0,amount"`
	OriginalPrice *float64              `json:"original_price,omitempty" validate:"omitempty,amount"`
	CostPrice     *float64              `json:"cost_price,omitempty" validate:"omitempty,amount"`
	Weight        *float64              `json:"weight,omitempty"`
	IsFeatured    *bool                 `json:"is_featured,omitempty"`
	IsNew         *bool                 `json:"is_new,omitempty"`
	IsHot         *bool                 `json:"is_hot,omitempty"`
	Status        *models.ProductStatus `json:"status,omitempty"`
	TagIDs        []uuid.UUID           `json:"tag_ids,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	CategoryID *uuid.UUID            `json:"category_id,omitempty"`
	Status     *models.ProductStatus `json:"status,omitempty"`
	PriceMin   *float64              `json:"price_min,omitempty"`
	PriceMax   *float64              `json:"price_max,omitempty"`
	TagID      *uuid.UUID            `json:"tag_id,omitempty"`
	InStock    *bool                 `json:"in_stock,omitempty"`
	IsFeatured *bool                 `json:"is_featured,omitempty"`
	IsNew      *bool                 `json:"is_new,omitempty"`
	IsHot      *bool                 `json:"is_hot,omitempty"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var category models.Category
	if err := s.db.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.Product{}).Where("sku_code = ?", req.SKUCode).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrSKUCodeTaken
	}

	product := &models.Product{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Subtitle:      req.Subtitle,
		Description:   req.Description,
		SKUCode:       req.SKUCode,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		CostPrice:     req.CostPrice,
		Stock:         req.Stock,
		Weight:        req.Weight,
		IsFeatured:    req.IsFeatured,
		IsNew:         req.IsNew,
		IsHot:         req.IsHot,
		Status:        models.ProductStatusOnSale,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		for _, skuReq := range req.SKUs {
			sku := &models.ProductSKU{
				ProductID: product.ID,
				Code:      skuReq.Code,
				Price:     skuReq.Price,
				Stock:     skuReq.Stock,
				SpecData:  models.JSONB(skuReq.SpecData),
			}
			if err := tx.Create(sku).Error; err != nil {
				return fmt.Errorf("failed to create sku: %w", err)
			}
		}

		for _, imgReq := range req.Images {
			img := &models.ProductImage{
				ProductID: product.ID,
				URL:       imgReq.URL,
				IsPrimary: imgReq.IsPrimary,
				SortOrder: imgReq.SortOrder,
			}
			if err := tx.Create(img).Error; err != nil {
				return fmt.Errorf("failed to create product image: %w", err)
			}
		}

		for _, specReq := range req.Specs {
			spec := &models.ProductSpec{
				ProductID: product.ID,
				Name:      specReq.Name,
				Value:     specReq.Value,
				SortOrder: specReq.SortOrder,
			}
			if err := tx.Create(spec).Error; err != nil {
				return fmt.Errorf("failed to create product spec: %w", err)
			}
		}

		for _, attrReq := range req.Attributes {
			var attribute models.Attribute
			if err := tx.First(&attribute, "id = ?", attrReq.AttributeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrAttributeNotFound
				}
				return fmt.Errorf("database error: %w", err)
			}
			value := &models.AttributeValue{
				ProductID:   product.ID,
				AttributeID: attrReq.AttributeID,
				Value:       attrReq.Value,
			}
			if err := tx.Create(value).Error; err != nil {
				return fmt.Errorf("failed to create attribute value: %w", err)
			}
		}

		if len(req.TagIDs) > 0 {
			if err := s.replaceTags(tx, product, req.TagIDs); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Category").Preload("SKUs").Preload("Images").
		Preload("Specs").Preload("Attrs").Preload("Tags").
		First(product, "id = ?", product.ID)

	return product, nil
}

func (s *ProductService) replaceTags(tx *gorm.DB, product *models.Product, tagIDs []uuid.UUID) error {
	var tags []models.Tag
	if err := tx.Find(&tags, "id IN ?", tagIDs).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if len(tags) != len(tagIDs) {
		return ErrTagNotFound
	}
	if err := tx.Model(product).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("failed to set tags: %w", err)
	}
	return nil
}

func (s *ProductService) GetProduct(id uuid.UUID, countView bool) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").Preload("SKUs").Preload("Images").
		Preload("Specs").Preload("Attrs").Preload("Attrs.Attribute").Preload("Tags").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.Status == models.ProductStatusDeleted {
		return nil, ErrProductNotFound
	}

	if countView {
		go s.incrementViewCount(id)
	}

	return &product, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, "id = ?", *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Subtitle != nil {
		updates["subtitle"] = *req.Subtitle
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.OriginalPrice != nil {
		updates["original_price"] = *req.OriginalPrice
	}
	if req.CostPrice != nil {
		updates["cost_price"] = *req.CostPrice
	}
	if req.Weight != nil {
		updates["weight"] = *req.Weight
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.IsNew != nil {
		updates["is_new"] = *req.IsNew
	}
	if req.IsHot != nil {
		updates["is_hot"] = *req.IsHot
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update product: %w", err)
			}
		}
		if req.TagIDs != nil {
			if err := s.replaceTags(tx, &product, req.TagIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Category").Preload("SKUs").Preload("Images").
		Preload("Specs").Preload("Attrs").Preload("Tags").
		First(&product, "id = ?", id)

	return &product, nil
}

// DeleteProduct soft-deletes by flipping the status so order items keep a
// valid reference.
func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	res := s.db.Model(&models.Product{}).
		Where("id = ? AND status <> ?", id, models.ProductStatusDeleted).
		UpdateColumn("status", models.ProductStatusDeleted)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Category").Preload("Images")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	} else {
		query = query.Where("status = ?", models.ProductStatusOnSale)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(subtitle) LIKE ? OR LOWER(description) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}
	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}
	if params.TagID != nil {
		query = query.Joins("JOIN product_tags ON product_tags.product_id = products.id").
			Where("product_tags.tag_id = ?", *params.TagID)
	}
	if params.InStock != nil && *params.InStock {
		query = query.Where("stock > 0")
	}
	if params.IsFeatured != nil {
		query = query.Where("is_featured = ?", *params.IsFeatured)
	}
	if params.IsNew != nil {
		query = query.Where("is_new = ?", *params.IsNew)
	}
	if params.IsHot != nil {
		query = query.Where("is_hot = ?", *params.IsHot)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "sales_count", "view_count", "stock"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetPopularProducts(limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("status = ?", models.ProductStatusOnSale).
		Order("sales_count DESC, view_count DESC").
		Limit(limit).
		Preload("Images").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch popular products: %w", err)
	}
	return products, nil
}

func (s *ProductService) GetFeaturedProducts(limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("status = ? AND is_featured = ?", models.ProductStatusOnSale, true).
		Order("created_at DESC").
		Limit(limit).
		Preload("Images").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch featured products: %w", err)
	}
	return products, nil
}

func (s *ProductService) incrementViewCount(productID uuid.UUID) {
	s.db.Model(&models.Product{}).Where("id = ?", productID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
}
