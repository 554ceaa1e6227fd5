package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/pkg/types"
)

// StoreSettings is the single-row store profile: contact details, delivery
// pricing, and opening hours (display string plus machine schedule).
type StoreSettings struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string              `gorm:"column:name;not null"`
	Address          *string             `gorm:"column:address"`
	Phone            *string             `gorm:"column:phone"`
	OpeningHours     *types.OpeningHours `gorm:"column:opening_hours;type:jsonb;serializer:json"`
	DeliveryFee      decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(10,2);not null"`
	MinOrderDelivery decimal.Decimal     `gorm:"column:min_order_delivery;type:numeric(10,2);not null"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
