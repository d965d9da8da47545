package enums

import "fmt"

// InventoryType partitions material stock between shop-owned and
// customer-supplied pools.
type InventoryType string

const (
	InventoryTypeInternal InventoryType = "internal"
	InventoryTypeOut      InventoryType = "out"
)

var validInventoryTypes = []InventoryType{
	InventoryTypeInternal,
	InventoryTypeOut,
}

// String implements fmt.Stringer.
func (t InventoryType) String() string {
	return string(t)
}

// IsValid reports whether the inventory type is recognized.
func (t InventoryType) IsValid() bool {
	for _, candidate := range validInventoryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseInventoryType converts a raw string into an InventoryType.
func ParseInventoryType(value string) (InventoryType, error) {
	for _, candidate := range validInventoryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory type %q", value)
}
