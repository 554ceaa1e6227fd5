package discounts

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/pkg/enums"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
)

// Rejection reasons surfaced in verification outcomes.
const (
	ReasonNotFound   = "not_found"
	ReasonMinOrder   = "min_order"
	ReasonNotStarted = "not_started"
	ReasonExpired    = "expired"
)

// Outcome is the result of verifying a discount code against a subtotal.
// An invalid outcome is not an error: checkout proceeds without a discount.
type Outcome struct {
	Valid    bool            `json:"valid"`
	Code     string          `json:"code,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason,omitempty"`
	MinOrder decimal.Decimal `json:"min_order,omitempty"`
}

// Service verifies discount codes.
type Service interface {
	Verify(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*Outcome, error)
}

type service struct {
	repo Repository
}

// NewService wires discounts dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "discounts repository required")
	}
	return &service{repo: repo}, nil
}

// Verify checks the code, its validity window, and the minimum order amount,
// then computes the discount clamped to the subtotal.
func (s *service) Verify(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*Outcome, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Codice sconto mancante")
	}
	if !subtotal.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Subtotale non valido")
	}

	row, err := s.repo.GetActiveByCode(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount code")
	}
	if row == nil {
		return &Outcome{Valid: false, Reason: ReasonNotFound, Amount: decimal.Zero}, nil
	}

	if now.Before(row.ValidFrom) {
		return &Outcome{Valid: false, Reason: ReasonNotStarted, Amount: decimal.Zero}, nil
	}
	if row.ValidUntil != nil && now.After(*row.ValidUntil) {
		return &Outcome{Valid: false, Reason: ReasonExpired, Amount: decimal.Zero}, nil
	}
	if subtotal.LessThan(row.MinOrderAmount) {
		return &Outcome{
			Valid:    false,
			Reason:   ReasonMinOrder,
			Amount:   decimal.Zero,
			MinOrder: row.MinOrderAmount,
		}, nil
	}

	amount := computeAmount(row.DiscountType, row.DiscountValue, subtotal)
	return &Outcome{Valid: true, Code: row.Code, Amount: amount}, nil
}

func computeAmount(discountType enums.DiscountType, value, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	if discountType == enums.DiscountTypePercentage {
		amount = subtotal.Mul(value).Div(decimal.NewFromInt(100))
	} else {
		amount = value
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return amount.Round(2)
}
