package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/pkg/enums"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
)

// Line is one priced cart entry: the product's unit price plus the per-unit
// additions surcharge, times the quantity.
type Line struct {
	UnitPrice          decimal.Decimal
	AdditionsUnitPrice decimal.Decimal
	Quantity           int
}

// Quote is the monetary breakdown stored on the order.
// Total = Subtotal + DeliveryFee - DiscountAmount, never negative.
type Quote struct {
	Subtotal       decimal.Decimal
	DeliveryFee    decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// Params configures a quote computation.
type Params struct {
	Lines          []Line
	OrderType      enums.OrderType
	DeliveryFee    decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Compute derives the order totals. Takeaway orders never pay a delivery
// fee; the discount is clamped to the subtotal.
func Compute(params Params) (*Quote, error) {
	if len(params.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	subtotal := decimal.Zero
	for _, line := range params.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() || line.AdditionsUnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line price must not be negative")
		}
		lineTotal := line.UnitPrice.Add(line.AdditionsUnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
	}
	subtotal = subtotal.Round(2)
	if !subtotal.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order subtotal must be positive")
	}

	deliveryFee := decimal.Zero
	if params.OrderType == enums.OrderTypeDelivery {
		deliveryFee = params.DeliveryFee
		if deliveryFee.IsNegative() {
			deliveryFee = decimal.Zero
		}
	}
	deliveryFee = deliveryFee.Round(2)

	discount := params.DiscountAmount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	discount = discount.Round(2)

	total := subtotal.Add(deliveryFee).Sub(discount)
	if !total.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	return &Quote{
		Subtotal:       subtotal,
		DeliveryFee:    deliveryFee,
		DiscountAmount: discount,
		Total:          total.Round(2),
	}, nil
}
