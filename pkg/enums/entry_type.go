package enums

import "fmt"

// EntryType classifies an inventory entry batch. Purchases arrive from a
// supplier, returns come back from an out job or another source.
type EntryType string

const (
	EntryTypePurchase EntryType = "purchase"
	EntryTypeReturn   EntryType = "return"
)

var validEntryTypes = []EntryType{
	EntryTypePurchase,
	EntryTypeReturn,
}

// String implements fmt.Stringer.
func (t EntryType) String() string {
	return string(t)
}

// IsValid reports whether the entry type is recognized.
func (t EntryType) IsValid() bool {
	for _, candidate := range validEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseEntryType converts a raw string into an EntryType.
func ParseEntryType(value string) (EntryType, error) {
	for _, candidate := range validEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entry type %q", value)
}
