// internal/models/product.go
package models

import (
	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	CategoryID    uuid.UUID     `json:"category_id" gorm:"type:uuid;not null;index"`
	Name          string        `json:"name" gorm:"size:255;not null"`
	Subtitle      string        `json:"subtitle" gorm:"size:255"`
	Description   string        `json:"description" gorm:"type:text"`
	SKUCode       string        `json:"sku_code" gorm:"column:sku_code;uniqueIndex;size:100;not null"`
	Price         float64       `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice float64       `json:"original_price" gorm:"type:decimal(10,2)"`
	CostPrice     float64       `json:"cost_price" gorm:"type:decimal(10,2)"`
	Stock         int           `json:"stock" gorm:"default:0"`
	Weight        float64       `json:"weight"`
	IsFeatured    bool          `json:"is_featured" gorm:"default:false"`
	IsNew         bool          `json:"is_new" gorm:"default:false"`
	IsHot         bool          `json:"is_hot" gorm:"default:false"`
	Status        ProductStatus `json:"status" gorm:"type:varchar(20);default:'on_sale';index"`
	SalesCount    int64         `json:"sales_count" gorm:"default:0"`
	ViewCount     int64         `json:"view_count" gorm:"default:0"`

	// Relationships
	Category Category         `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	SKUs     []ProductSKU     `json:"skus,omitempty" gorm:"foreignKey:ProductID"`
	Images   []ProductImage   `json:"images,omitempty" gorm:"foreignKey:ProductID"`
	Specs    []ProductSpec    `json:"specs,omitempty" gorm:"foreignKey:ProductID"`
	Attrs    []AttributeValue `json:"attrs,omitempty" gorm:"foreignKey:ProductID"`
	Tags     []Tag            `json:"tags,omitempty" gorm:"many2many:product_tags"`
}

// ProductSKU is a sellable variant with its own stock counter. Stock moves on
// the parent product are mirrored here when a SKU is named.
type ProductSKU struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Code      string    `json:"code" gorm:"uniqueIndex;size:100;not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2)"`
	Stock     int       `json:"stock" gorm:"default:0"`
	SpecData  JSONB     `json:"spec_data" gorm:"type:jsonb"`
}

type ProductImage struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	URL       string    `json:"url" gorm:"size:512;not null"`
	IsPrimary bool      `json:"is_primary" gorm:"default:false"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
}

type ProductSpec struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Value     string    `json:"value" gorm:"size:255"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
}

type CartItem struct {
	BaseModel
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index:idx_cart_user_product"`
	ProductID uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index:idx_cart_user_product"`
	SKUID     *uuid.UUID `json:"sku_id" gorm:"column:sku_id;type:uuid"`
	Quantity  int        `json:"quantity" gorm:"not null"`

	Product Product     `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	SKU     *ProductSKU `json:"sku,omitempty" gorm:"foreignKey:SKUID"`
}
