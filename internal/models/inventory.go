// internal/models/inventory.go
package models

import (
	"github.com/google/uuid"
)

// InventoryRecord is the immutable stock ledger. One row per committed stock
// change; Product.Stock is a cached projection of this ledger's running sum.
type InventoryRecord struct {
	BaseModel
	ProductID    uuid.UUID   `json:"product_id" gorm:"type:uuid;not null;index"`
	SKUID        *uuid.UUID  `json:"sku_id" gorm:"column:sku_id;type:uuid"`
	Type         StockOpType `json:"type" gorm:"type:varchar(10);not null;index"`
	Quantity     int         `json:"quantity" gorm:"not null"`
	CurrentStock int         `json:"current_stock" gorm:"not null"`
	Reason       string      `json:"reason" gorm:"size:255"`
	Remark       string      `json:"remark" gorm:"type:text"`
	OperatorID   uuid.UUID   `json:"operator_id" gorm:"type:uuid"`

	Product  Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Operator User    `json:"operator,omitempty" gorm:"foreignKey:OperatorID"`
}

type InventoryAlert struct {
	BaseModel
	ProductID uuid.UUID   `json:"product_id" gorm:"type:uuid;not null;index"`
	SKUID     *uuid.UUID  `json:"sku_id" gorm:"column:sku_id;type:uuid"`
	MinStock  int         `json:"min_stock" gorm:"not null"`
	MaxStock  int         `json:"max_stock" gorm:"not null"`
	AlertType AlertType   `json:"alert_type" gorm:"type:varchar(10);default:'none'"`
	Status    AlertStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
