// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone        string     `json:"phone" gorm:"size:20;index"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'customer';index"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	Points       int        `json:"points" gorm:"default:0"`
	ProfileData  JSONB      `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Roles     []Role      `json:"roles,omitempty" gorm:"many2many:user_roles"`
	Orders    []Order     `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	CartItems []CartItem  `json:"cart_items,omitempty" gorm:"foreignKey:UserID"`
	Coupons   []UserCoupon `json:"coupons,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// Role is an admin-managed permission group. The coarse User.Role field decides
// admin access; fine-grained permissions hang off these rows.
type Role struct {
	BaseModel
	Name        string       `json:"name" gorm:"uniqueIndex;size:50;not null"`
	Description string       `json:"description" gorm:"type:text"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions"`
}

type Permission struct {
	BaseModel
	Name      string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Module    string `json:"module" gorm:"size:50;index"`
	Operation string `json:"operation" gorm:"size:50"`
}

// AdminNotification holds internal alerts surfaced on the admin dashboard
// (e.g. triggered inventory alerts). Dispatch to external channels is a
// logged no-op for now.
type AdminNotification struct {
	BaseModel
	Type               string     `json:"type" gorm:"size:50;index"`
	Title              string     `json:"title" gorm:"size:255"`
	Message            string     `json:"message" gorm:"type:text"`
	Priority           string     `json:"priority" gorm:"size:20;default:'medium'"`
	RelatedResourceID  *uuid.UUID `json:"related_resource_id" gorm:"type:uuid"`
	ReadAt             *time.Time `json:"read_at"`
}

// AuditLog records every mutating API call, written asynchronously by the
// audit middleware.
type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:255"`
	ResourceType string     `json:"resource_type" gorm:"size:50;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"size:512"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
}
