package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/pkg/enums"
)

// OrderItem is the immutable line-item snapshot stored on the order. Prices
// are captured at order time and never re-derived.
type OrderItem struct {
	ProductID          uuid.UUID       `json:"product_id"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	Quantity           int             `json:"quantity"`
	Additions          string          `json:"additions,omitempty"`
	AdditionsUnitPrice decimal.Decimal `json:"additions_unit_price"`
	AdditionsIDs       []uuid.UUID     `json:"additions_ids,omitempty"`
}

// Order is a customer order with its computed monetary breakdown.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string               `gorm:"column:order_number;uniqueIndex:orders_order_number_key;not null"`
	CustomerName    string               `gorm:"column:customer_name;not null"`
	CustomerPhone   string               `gorm:"column:customer_phone;not null"`
	CustomerAddress *string              `gorm:"column:customer_address"`
	OrderType       enums.OrderType      `gorm:"column:order_type;type:text;not null"`
	PaymentMethod   *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	Items           []OrderItem          `gorm:"column:items;type:jsonb;serializer:json"`
	Subtotal        decimal.Decimal      `gorm:"column:subtotal;type:numeric(10,2);not null"`
	DiscountCode    *string              `gorm:"column:discount_code"`
	DiscountAmount  decimal.Decimal      `gorm:"column:discount_amount;type:numeric(10,2);not null"`
	DeliveryFee     decimal.Decimal      `gorm:"column:delivery_fee;type:numeric(10,2);not null"`
	Total           decimal.Decimal      `gorm:"column:total;type:numeric(10,2);not null"`
	Status          enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	Notes           *string              `gorm:"column:notes"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
