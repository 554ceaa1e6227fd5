package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/pkg/enums"
)

// DiscountCode is a staff-managed promotional code. Codes are stored
// upper-case and matched case-insensitively.
type DiscountCode struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string             `gorm:"column:code;uniqueIndex;not null"`
	DiscountType   enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue  decimal.Decimal    `gorm:"column:discount_value;type:numeric(10,2);not null"`
	MinOrderAmount decimal.Decimal    `gorm:"column:min_order_amount;type:numeric(10,2);not null"`
	Active         bool               `gorm:"column:active;not null;default:true"`
	ValidFrom      time.Time          `gorm:"column:valid_from;not null"`
	ValidUntil     *time.Time         `gorm:"column:valid_until"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
}
