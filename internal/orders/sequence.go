package orders

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	orderNumberPrefix = "AF"
	orderNumberDigits = 6
)

var orderNumberPattern = regexp.MustCompile(`^AF(\d+)$`)

// NextOrderNumber derives the number following the most recently assigned
// one. A missing or malformed predecessor restarts the sequence at 1; the
// unique constraint on orders.order_number is the concurrency backstop.
func NextOrderNumber(last string) string {
	next := 1
	if match := orderNumberPattern.FindStringSubmatch(strings.TrimSpace(last)); match != nil {
		if parsed, err := strconv.Atoi(match[1]); err == nil {
			next = parsed + 1
		}
	}
	return fmt.Sprintf("%s%0*d", orderNumberPrefix, orderNumberDigits, next)
}

// NormalizeOrderNumber cleans customer-typed lookups: case, a leading '#',
// and stray whitespace are forgiven, and a bare number like "7" is expanded
// to its canonical form.
func NormalizeOrderNumber(raw string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, "#", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return ""
	}

	digits := strings.TrimPrefix(cleaned, orderNumberPrefix)
	if parsed, err := strconv.Atoi(digits); err == nil && parsed > 0 {
		return fmt.Sprintf("%s%0*d", orderNumberPrefix, orderNumberDigits, parsed)
	}
	return cleaned
}
