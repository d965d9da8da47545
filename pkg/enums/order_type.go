package enums

import "fmt"

// OrderType distinguishes internal jobs (shop materials only) from out jobs
// that consume customer-supplied materials.
type OrderType string

const (
	OrderTypeInternal OrderType = "internal"
	OrderTypeOut      OrderType = "out"
)

var validOrderTypes = []OrderType{
	OrderTypeInternal,
	OrderTypeOut,
}

// String implements fmt.Stringer.
func (t OrderType) String() string {
	return string(t)
}

// IsValid reports whether the order type is recognized.
func (t OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderType converts a raw string into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
