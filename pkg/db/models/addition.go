package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/pkg/enums"
)

// Addition is a sauce or extra that can be attached to a line item.
type Addition struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type         enums.AdditionType `gorm:"column:type;type:text;not null"`
	Name         string             `gorm:"column:name;not null"`
	Price        decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null"`
	Active       bool               `gorm:"column:active;not null;default:true"`
	DisplayOrder int                `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (Addition) TableName() string {
	return "order_additions"
}

// AdditionCategoryRule is the staff-managed per-category sauce policy.
// Absence of an active rule falls back to the slug-based default.
type AdditionCategoryRule struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID uuid.UUID       `gorm:"column:category_id;type:uuid;uniqueIndex;not null"`
	SauceMode  enums.SauceMode `gorm:"column:sauce_mode;type:text;not null;default:'free_single'"`
	MaxSauces  int             `gorm:"column:max_sauces;not null;default:1"`
	SaucePrice decimal.Decimal `gorm:"column:sauce_price;type:numeric(10,2);not null"`
	Active     bool            `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (AdditionCategoryRule) TableName() string {
	return "order_addition_category_rules"
}
