package enums

import "fmt"

// PushAudience scopes a device token to either a customer (per order) or the
// store staff.
type PushAudience string

const (
	PushAudienceCustomer PushAudience = "customer"
	PushAudienceAdmin    PushAudience = "admin"
)

var validPushAudiences = []PushAudience{
	PushAudienceCustomer,
	PushAudienceAdmin,
}

// String implements fmt.Stringer.
func (p PushAudience) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PushAudience.
func (p PushAudience) IsValid() bool {
	for _, candidate := range validPushAudiences {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePushAudience converts raw input into a PushAudience.
func ParsePushAudience(value string) (PushAudience, error) {
	for _, candidate := range validPushAudiences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid push audience %q", value)
}
