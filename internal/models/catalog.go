// internal/models/catalog.go
package models

import (
	"github.com/google/uuid"
)

type Category struct {
	BaseModel
	Name        string         `json:"name" gorm:"uniqueIndex;size:100;not null"`
	ParentID    *uuid.UUID     `json:"parent_id" gorm:"type:uuid;index"`
	Level       int            `json:"level" gorm:"default:1"`
	SortOrder   int            `json:"sort_order" gorm:"default:0"`
	Icon        string         `json:"icon" gorm:"size:255"`
	Description string         `json:"description" gorm:"type:text"`
	Status      CategoryStatus `json:"status" gorm:"type:varchar(20);default:'active'"`

	// Relationships
	Parent   *Category  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Products []Product  `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Attribute struct {
	BaseModel
	Name       string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	InputType  string `json:"input_type" gorm:"size:20;default:'text'"`
	Filterable bool   `json:"filterable" gorm:"default:false"`
	SortOrder  int    `json:"sort_order" gorm:"default:0"`
}

// AttributeValue binds one attribute's value to a product.
type AttributeValue struct {
	BaseModel
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index:idx_attr_values_product_attr"`
	AttributeID uuid.UUID `json:"attribute_id" gorm:"type:uuid;not null;index:idx_attr_values_product_attr"`
	Value       string    `json:"value" gorm:"size:255"`

	Attribute Attribute `json:"attribute,omitempty" gorm:"foreignKey:AttributeID"`
}

type Tag struct {
	BaseModel
	Name      string `json:"name" gorm:"uniqueIndex;size:50;not null"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`

	Products []Product `json:"products,omitempty" gorm:"many2many:product_tags"`
}
