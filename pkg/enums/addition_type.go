package enums

import "fmt"

// AdditionType partitions order additions into sauces and extras.
type AdditionType string

const (
	AdditionTypeSauce AdditionType = "sauce"
	AdditionTypeExtra AdditionType = "extra"
)

var validAdditionTypes = []AdditionType{
	AdditionTypeSauce,
	AdditionTypeExtra,
}

// String implements fmt.Stringer.
func (a AdditionType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdditionType.
func (a AdditionType) IsValid() bool {
	for _, candidate := range validAdditionTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAdditionType converts raw input into an AdditionType.
func ParseAdditionType(value string) (AdditionType, error) {
	for _, candidate := range validAdditionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid addition type %q", value)
}
