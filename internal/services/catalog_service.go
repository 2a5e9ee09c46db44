// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/utils"
)

// CatalogService manages the category tree, product attributes and tags.
type CatalogService struct {
	db *gorm.DB
}

type CategoryRequest struct {
	Name        string     `json:"name" validate:"required,max=100"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder   int        `json:"sort_order"`
	Icon        string     `json:"icon,omitempty"`
	Description string     `json:"description,omitempty"`
}

type CategoryOrderEntry struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	SortOrder int       `json:"sort_order" validate:"min=0"`
}

type ReorderCategoriesRequest struct {
	Categories []CategoryOrderEntry `json:"categories" validate:"required,min=1,dive"`
}

type AttributeRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	InputType  string `json:"input_type" validate:"omitempty,oneof=text select multiselect"`
	Filterable bool   `json:"filterable"`
	SortOrder  int    `json:"sort_order"`
}

type TagRequest struct {
	Name      string `json:"name" validate:"required,max=50"`
	SortOrder int    `json:"sort_order"`
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Categories

func (s *CatalogService) CreateCategory(req *CategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.Category{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrCategoryNameTaken
	}

	level := 1
	if req.ParentID != nil {
		var parent models.Category
		if err := s.db.First(&parent, "id = ?", *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		level = parent.Level + 1
	}

	category := &models.Category{
		Name:        req.Name,
		ParentID:    req.ParentID,
		Level:       level,
		SortOrder:   req.SortOrder,
		Icon:        req.Icon,
		Description: req.Description,
		Status:      models.CategoryStatusActive,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *CatalogService) UpdateCategory(id uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var category models.Category
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("name = ? AND id <> ?", req.Name, id).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrCategoryNameTaken
	}

	level := 1
	if req.ParentID != nil {
		if err := s.checkNoCycle(id, *req.ParentID); err != nil {
			return nil, err
		}
		var parent models.Category
		if err := s.db.First(&parent, "id = ?", *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		level = parent.Level + 1
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"parent_id":   req.ParentID,
		"level":       level,
		"sort_order":  req.SortOrder,
		"icon":        req.Icon,
		"description": req.Description,
	}
	if err := s.db.Model(&category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.db.First(&category, "id = ?", id)
	return &category, nil
}

// checkNoCycle walks up from the proposed parent; finding the category itself
// on that path would make it an ancestor of its own parent.
func (s *CatalogService) checkNoCycle(categoryID, parentID uuid.UUID) error {
	if categoryID == parentID {
		return ErrCategoryCycle
	}

	current := parentID
	for {
		var node models.Category
		if err := s.db.Select("id", "parent_id").First(&node, "id = ?", current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		if node.ParentID == nil {
			return nil
		}
		if *node.ParentID == categoryID {
			return ErrCategoryCycle
		}
		current = *node.ParentID
	}
}

func (s *CatalogService) DeleteCategory(id uuid.UUID) error {
	var category models.Category
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	var childCount int64
	if err := s.db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if childCount > 0 {
		return ErrCategoryHasChildren
	}

	var productCount int64
	if err := s.db.Model(&models.Product{}).
		Where("category_id = ? AND status <> ?", id, models.ProductStatusDeleted).
		Count(&productCount).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if productCount > 0 {
		return ErrCategoryHasProducts
	}

	if err := s.db.Delete(&category).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *CatalogService) GetCategory(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.Preload("Children").First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

// GetCategoryTree returns all active categories as a nested tree.
func (s *CatalogService) GetCategoryTree() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("status = ?", models.CategoryStatusActive).
		Order("sort_order ASC, created_at ASC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	byParent := make(map[uuid.UUID][]models.Category)
	var roots []models.Category
	for _, c := range categories {
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}

	var attach func(node *models.Category)
	attach = func(node *models.Category) {
		node.Children = byParent[node.ID]
		for i := range node.Children {
			attach(&node.Children[i])
		}
	}
	for i := range roots {
		attach(&roots[i])
	}

	return roots, nil
}

// ReorderCategories applies new sort orders in one transaction; an unknown
// category rejects the whole batch.
func (s *CatalogService) ReorderCategories(req *ReorderCategoriesRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range req.Categories {
			res := tx.Model(&models.Category{}).
				Where("id = ?", entry.ID).
				UpdateColumn("sort_order", entry.SortOrder)
			if res.Error != nil {
				return fmt.Errorf("failed to reorder category: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("category %s: %w", entry.ID, ErrCategoryNotFound)
			}
		}
		return nil
	})
}

func (s *CatalogService) SetCategoryStatus(id uuid.UUID, status models.CategoryStatus) error {
	res := s.db.Model(&models.Category{}).Where("id = ?", id).UpdateColumn("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update category status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Attributes

func (s *CatalogService) CreateAttribute(req *AttributeRequest) (*models.Attribute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attribute := &models.Attribute{
		Name:       req.Name,
		InputType:  req.InputType,
		Filterable: req.Filterable,
		SortOrder:  req.SortOrder,
	}
	if attribute.InputType == "" {
		attribute.InputType = "text"
	}
	if err := s.db.Create(attribute).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute: %w", err)
	}
	return attribute, nil
}

func (s *CatalogService) UpdateAttribute(id uuid.UUID, req *AttributeRequest) (*models.Attribute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var attribute models.Attribute
	if err := s.db.First(&attribute, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttributeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{
		"name":       req.Name,
		"filterable": req.Filterable,
		"sort_order": req.SortOrder,
	}
	if req.InputType != "" {
		updates["input_type"] = req.InputType
	}
	if err := s.db.Model(&attribute).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update attribute: %w", err)
	}

	s.db.First(&attribute, "id = ?", id)
	return &attribute, nil
}

func (s *CatalogService) DeleteAttribute(id uuid.UUID) error {
	res := s.db.Delete(&models.Attribute{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete attribute: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAttributeNotFound
	}
	return nil
}

func (s *CatalogService) ListAttributes() ([]models.Attribute, error) {
	var attributes []models.Attribute
	if err := s.db.Order("sort_order ASC, created_at ASC").Find(&attributes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch attributes: %w", err)
	}
	return attributes, nil
}

// Tags

func (s *CatalogService) CreateTag(req *TagRequest) (*models.Tag, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tag := &models.Tag{
		Name:      req.Name,
		SortOrder: req.SortOrder,
	}
	if err := s.db.Create(tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

func (s *CatalogService) DeleteTag(id uuid.UUID) error {
	res := s.db.Delete(&models.Tag{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete tag: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTagNotFound
	}
	return nil
}

func (s *CatalogService) ListTags() ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.Order("sort_order ASC, created_at ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}
	return tags, nil
}
