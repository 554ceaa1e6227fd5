package validators

import "strings"

// Field length caps applied to customer-supplied text.
const (
	MaxNameLen    = 100
	MaxPhoneLen   = 20
	MaxAddressLen = 500
	MaxNotesLen   = 1000
)

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// SanitizeString trims whitespace, strips angle brackets, and caps the
// length. Pass maxLen <= 0 to skip the cap.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.TrimSpace(angleBrackets.Replace(input))
	if maxLen > 0 && len(cleaned) > maxLen {
		return strings.TrimSpace(cleaned[:maxLen])
	}
	return cleaned
}

// SanitizeOptional behaves like SanitizeString but maps empty input to nil.
func SanitizeOptional(input *string, maxLen int) *string {
	if input == nil {
		return nil
	}
	cleaned := SanitizeString(*input, maxLen)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
