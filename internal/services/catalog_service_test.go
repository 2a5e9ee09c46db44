// internal/services/catalog_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimall/backend/internal/models"
)

func TestCategoryTreeNesting(t *testing.T) {
	db := openTestDB(t)
	service := NewCatalogService(db)

	root, err := service.CreateCategory(&CategoryRequest{Name: "Electronics"})
	require.NoError(t, err)
	assert.Equal(t, 1, root.Level)

	phones, err := service.CreateCategory(&CategoryRequest{Name: "Phones", ParentID: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, phones.Level)

	_, err = service.CreateCategory(&CategoryRequest{Name: "Laptops", ParentID: &root.ID})
	require.NoError(t, err)

	cases, err := service.CreateCategory(&CategoryRequest{Name: "Cases", ParentID: &phones.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, cases.Level)

	tree, err := service.GetCategoryTree()
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)

	var phoneNode *models.Category
	for i := range tree[0].Children {
		if tree[0].Children[i].Name == "Phones" {
			phoneNode = &tree[0].Children[i]
		}
	}
	require.NotNil(t, phoneNode)
	require.Len(t, phoneNode.Children, 1)
	assert.Equal(t, "Cases", phoneNode.Children[0].Name)
}

func TestReorderCategories(t *testing.T) {
	db := openTestDB(t)
	service := NewCatalogService(db)

	books, err := service.CreateCategory(&CategoryRequest{Name: "Books", SortOrder: 1})
	require.NoError(t, err)
	games, err := service.CreateCategory(&CategoryRequest{Name: "Games", SortOrder: 2})
	require.NoError(t, err)

	err = service.ReorderCategories(&ReorderCategoriesRequest{
		Categories: []CategoryOrderEntry{
			{ID: books.ID, SortOrder: 2},
			{ID: games.ID, SortOrder: 1},
		},
	})
	require.NoError(t, err)

	tree, err := service.GetCategoryTree()
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Games", tree[0].Name)
	assert.Equal(t, "Books", tree[1].Name)

	// An unknown category rejects the whole batch.
	err = service.ReorderCategories(&ReorderCategoriesRequest{
		Categories: []CategoryOrderEntry{
			{ID: books.ID, SortOrder: 9},
			{ID: uuid.New(), SortOrder: 10},
		},
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	var reloaded models.Category
	require.NoError(t, db.First(&reloaded, "id = ?", books.ID).Error)
	assert.Equal(t, 2, reloaded.SortOrder)
}

func TestCategoryNameTaken(t *testing.T) {
	db := openTestDB(t)
	service := NewCatalogService(db)

	_, err := service.CreateCategory(&CategoryRequest{Name: "Books"})
	require.NoError(t, err)

	_, err = service.CreateCategory(&CategoryRequest{Name: "Books"})
	assert.ErrorIs(t, err, ErrCategoryNameTaken)
}

func TestCategoryCycleDetection(t *testing.T) {
	db := openTestDB(t)
	service := NewCatalogService(db)

	a, err := service.CreateCategory(&CategoryRequest{Name: "A"})
	require.NoError(t, err)
	b, err := service.CreateCategory(&CategoryRequest{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)
	c, err := service.CreateCategory(&CategoryRequest{Name: "C", ParentID: &b.ID})
	require.NoError(t, err)

	// A cannot become its own descendant's child.
	_, err = service.UpdateCategory(a.ID, &CategoryRequest{Name: "A", ParentID: &c.ID})
	assert.ErrorIs(t, err, ErrCategoryCycle)

	// Nor its own parent.
	_, err = service.UpdateCategory(a.ID, &CategoryRequest{Name: "A", ParentID: &a.ID})
	assert.ErrorIs(t, err, ErrCategoryCycle)

	// Reparenting a leaf elsewhere is fine.
	_, err = service.UpdateCategory(c.ID, &CategoryRequest{Name: "C", ParentID: &a.ID})
	assert.NoError(t, err)
}

func TestDeleteCategoryGuards(t *testing.T) {
	db := openTestDB(t)
	service := NewCatalogService(db)

	parent, err := service.CreateCategory(&CategoryRequest{Name: "Parent"})
	require.NoError(t, err)
	child, err := service.CreateCategory(&CategoryRequest{Name: "Child", ParentID: &parent.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, service.DeleteCategory(parent.ID), ErrCategoryHasChildren)

	product := &models.Product{
		CategoryID: child.ID,
		Name:       "thing",
		SKUCode:    "SKU-thing",
		Price:      9.99,
		Status:     models.ProductStatusOnSale,
	}
	require.NoError(t, db.Create(product).Error)

	assert.ErrorIs(t, service.DeleteCategory(child.ID), ErrCategoryHasProducts)

	// Soft-deleted products do not block removal.
	require.NoError(t, db.Model(product).UpdateColumn("status", models.ProductStatusDeleted).Error)
	assert.NoError(t, service.DeleteCategory(child.ID))
	assert.NoError(t, service.DeleteCategory(parent.ID))

	assert.ErrorIs(t, service.DeleteCategory(parent.ID), ErrCategoryNotFound)
}

func TestInactiveCategoriesExcludedFromTree(t *testing.T) {
	db := openTestDB(t)
	service := NewCatalogService(db)

	visible, err := service.CreateCategory(&CategoryRequest{Name: "Visible"})
	require.NoError(t, err)
	hidden, err := service.CreateCategory(&CategoryRequest{Name: "Hidden"})
	require.NoError(t, err)

	require.NoError(t, service.SetCategoryStatus(hidden.ID, models.CategoryStatusInactive))

	tree, err := service.GetCategoryTree()
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, visible.ID, tree[0].ID)
}

func TestAttributeAndTagCRUD(t *testing.T) {
	db := openTestDB(t)
	service := NewCatalogService(db)

	attr, err := service.CreateAttribute(&AttributeRequest{Name: "Color"})
	require.NoError(t, err)
	assert.Equal(t, "text", attr.InputType)

	updated, err := service.UpdateAttribute(attr.ID, &AttributeRequest{
		Name:       "Color",
		InputType:  "select",
		Filterable: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "select", updated.InputType)
	assert.True(t, updated.Filterable)

	tag, err := service.CreateTag(&TagRequest{Name: "sale"})
	require.NoError(t, err)

	tags, err := service.ListTags()
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	require.NoError(t, service.DeleteTag(tag.ID))
	assert.ErrorIs(t, service.DeleteTag(tag.ID), ErrTagNotFound)

	require.NoError(t, service.DeleteAttribute(attr.ID))
	assert.ErrorIs(t, service.DeleteAttribute(attr.ID), ErrAttributeNotFound)
}
