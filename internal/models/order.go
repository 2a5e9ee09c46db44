// internal/models/order.go
package models

import (
	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	UserID        uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	OrderNo       string      `json:"order_no" gorm:"uniqueIndex;size:40;not null"`
	TotalAmount   float64     `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status        OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentMethod string      `json:"payment_method" gorm:"size:50"`
	PaymentRef    string      `json:"payment_ref" gorm:"size:255"`
	CouponID      *uuid.UUID  `json:"coupon_id" gorm:"type:uuid"`

	// Relationships
	User            User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items           []OrderItem      `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty" gorm:"foreignKey:OrderID"`
	StatusLogs      []OrderStatusLog `json:"status_logs,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem rows are immutable once the order is created; cancellation
// reverses their stock effect but never deletes them.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID  `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	SKUID     *uuid.UUID `json:"sku_id" gorm:"column:sku_id;type:uuid"`
	Quantity  int        `json:"quantity" gorm:"not null"`
	UnitPrice float64    `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	LineTotal float64    `json:"line_total" gorm:"type:decimal(10,2);not null"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type ShippingAddress struct {
	BaseModel
	OrderID      uuid.UUID `json:"order_id" gorm:"type:uuid;not null;uniqueIndex"`
	ReceiverName string    `json:"receiver_name" gorm:"size:100;not null"`
	Phone        string    `json:"phone" gorm:"size:20;not null"`
	Province     string    `json:"province" gorm:"size:50"`
	City         string    `json:"city" gorm:"size:50"`
	District     string    `json:"district" gorm:"size:50"`
	Address      string    `json:"address" gorm:"size:255;not null"`
	ZipCode      string    `json:"zip_code" gorm:"size:10"`
}

// OrderStatusLog is the append-only history of status transitions. The latest
// row's status always equals Order.Status.
type OrderStatusLog struct {
	BaseModel
	OrderID    uuid.UUID   `json:"order_id" gorm:"type:uuid;not null;index"`
	Status     OrderStatus `json:"status" gorm:"type:varchar(20);not null"`
	OperatorID uuid.UUID   `json:"operator_id" gorm:"type:uuid"`
	Remark     string      `json:"remark" gorm:"type:text"`

	Operator User `json:"operator,omitempty" gorm:"foreignKey:OperatorID"`
}
