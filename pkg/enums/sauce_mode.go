package enums

import "fmt"

// SauceMode is the per-category policy governing how many sauces a line item
// may carry and whether they are free or paid. Consumers must switch
// exhaustively over the three modes.
type SauceMode string

const (
	SauceModeNone       SauceMode = "none"
	SauceModeFreeSingle SauceMode = "free_single"
	SauceModePaidMulti  SauceMode = "paid_multi"
)

var validSauceModes = []SauceMode{
	SauceModeNone,
	SauceModeFreeSingle,
	SauceModePaidMulti,
}

// String implements fmt.Stringer.
func (m SauceMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known SauceMode.
func (m SauceMode) IsValid() bool {
	for _, candidate := range validSauceModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseSauceMode converts raw input into a SauceMode.
func ParseSauceMode(value string) (SauceMode, error) {
	for _, candidate := range validSauceModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sauce mode %q", value)
}
