package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/pkg/db/models"
)

// CreateOrderItemInput is one line of the submitted cart.
type CreateOrderItemInput struct {
	ProductID   uuid.UUID   `json:"product_id" validate:"required"`
	Quantity    int         `json:"quantity" validate:"required,min=1,max=99"`
	AdditionIDs []uuid.UUID `json:"addition_ids"`
}

// CreateOrderInput is the public intake payload.
type CreateOrderInput struct {
	CustomerName    string                 `json:"customer_name" validate:"required"`
	CustomerPhone   string                 `json:"customer_phone" validate:"required"`
	CustomerAddress *string                `json:"customer_address"`
	OrderType       string                 `json:"order_type" validate:"required,oneof=delivery takeaway"`
	PaymentMethod   *string                `json:"payment_method" validate:"omitempty,oneof=cash card"`
	Items           []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
	DiscountCode    *string                `json:"discount_code"`
	Notes           *string                `json:"notes"`
	CaptchaToken    string                 `json:"captcha_token"`
}

// UpdateStatusInput is the staff transition payload.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=confirmed preparing ready completed cancelled"`
}

// ItemView is the public projection of a stored line item.
type ItemView struct {
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	Quantity           int             `json:"quantity"`
	Additions          string          `json:"additions,omitempty"`
	AdditionsUnitPrice decimal.Decimal `json:"additions_unit_price"`
}

// OrderView is the public projection of an order, used by the tracking page.
type OrderView struct {
	OrderNumber     string          `json:"order_number"`
	Status          string          `json:"status"`
	OrderType       string          `json:"order_type"`
	PaymentMethod   *string         `json:"payment_method,omitempty"`
	CustomerName    string          `json:"customer_name"`
	CustomerAddress *string         `json:"customer_address,omitempty"`
	Items           []ItemView      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	DiscountCode    *string         `json:"discount_code,omitempty"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// StatusView is the light polling projection.
type StatusView struct {
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewOrderView maps a stored order onto its public projection.
func NewOrderView(order *models.Order) *OrderView {
	items := make([]ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemView{
			Name:               item.Name,
			Price:              item.Price,
			Quantity:           item.Quantity,
			Additions:          item.Additions,
			AdditionsUnitPrice: item.AdditionsUnitPrice,
		})
	}

	var paymentMethod *string
	if order.PaymentMethod != nil {
		value := order.PaymentMethod.String()
		paymentMethod = &value
	}

	return &OrderView{
		OrderNumber:     order.OrderNumber,
		Status:          order.Status.String(),
		OrderType:       order.OrderType.String(),
		PaymentMethod:   paymentMethod,
		CustomerName:    order.CustomerName,
		CustomerAddress: order.CustomerAddress,
		Items:           items,
		Subtotal:        order.Subtotal,
		DeliveryFee:     order.DeliveryFee,
		DiscountCode:    order.DiscountCode,
		DiscountAmount:  order.DiscountAmount,
		Total:           order.Total,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// NewStatusView maps a stored order onto the light polling projection.
func NewStatusView(order *models.Order) *StatusView {
	return &StatusView{
		OrderNumber: order.OrderNumber,
		Status:      order.Status.String(),
		UpdatedAt:   order.UpdatedAt,
	}
}
