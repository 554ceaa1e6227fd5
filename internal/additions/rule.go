package additions

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/pkg/enums"
)

const maxSaucesCeiling = 10

// Rule is the effective sauce policy applied to a product category.
type Rule struct {
	Mode       enums.SauceMode `json:"sauce_mode"`
	MaxSauces  int             `json:"max_sauces"`
	SaucePrice decimal.Decimal `json:"sauce_price"`
}

// DefaultRule is a single free sauce, the policy for most of the menu.
func DefaultRule() Rule {
	return Rule{Mode: enums.SauceModeFreeSingle, MaxSauces: 1, SaucePrice: decimal.Zero}
}

// NormalizeRule clamps staff-entered values into a consistent policy.
// The mode dictates the other fields: "none" carries no sauces, "free_single"
// always means one free sauce, and "paid_multi" needs at least one paid slot.
func NormalizeRule(mode enums.SauceMode, maxSauces int, saucePrice decimal.Decimal) Rule {
	if !mode.IsValid() {
		mode = enums.SauceModeFreeSingle
	}

	if maxSauces < 0 {
		maxSauces = 0
	}
	if maxSauces > maxSaucesCeiling {
		maxSauces = maxSaucesCeiling
	}
	if saucePrice.IsNegative() {
		saucePrice = decimal.Zero
	}
	saucePrice = saucePrice.Round(2)

	switch mode {
	case enums.SauceModeNone:
		return Rule{Mode: mode, MaxSauces: 0, SaucePrice: decimal.Zero}
	case enums.SauceModeFreeSingle:
		return Rule{Mode: mode, MaxSauces: 1, SaucePrice: decimal.Zero}
	default:
		if maxSauces < 1 {
			maxSauces = 1
		}
		return Rule{Mode: mode, MaxSauces: maxSauces, SaucePrice: saucePrice}
	}
}

// FallbackRuleForSlug is the policy used when a category has no active rule.
// Mini and burger menus charge per sauce; everything else gets one free.
func FallbackRuleForSlug(slug string) Rule {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if strings.Contains(normalized, "mini") || strings.Contains(normalized, "burger") {
		return Rule{
			Mode:       enums.SauceModePaidMulti,
			MaxSauces:  3,
			SaucePrice: decimal.NewFromFloat(0.5),
		}
	}
	return DefaultRule()
}
