package enums

import "fmt"

// MaterialKind identifies which ledger pool a quantity mutation targets.
type MaterialKind string

const (
	MaterialKindStones  MaterialKind = "stones"
	MaterialKindPaper   MaterialKind = "paper"
	MaterialKindPlastic MaterialKind = "plastic"
	MaterialKindTape    MaterialKind = "tape"
)

var validMaterialKinds = []MaterialKind{
	MaterialKindStones,
	MaterialKindPaper,
	MaterialKindPlastic,
	MaterialKindTape,
}

// String implements fmt.Stringer.
func (k MaterialKind) String() string {
	return string(k)
}

// IsValid reports whether the material kind is recognized.
func (k MaterialKind) IsValid() bool {
	for _, candidate := range validMaterialKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// AllowsFractionalQuantity reports whether quantities of this kind may carry
// decimal places. Stones are weighed in grams to two decimals; every other
// kind is counted in whole units.
func (k MaterialKind) AllowsFractionalQuantity() bool {
	return k == MaterialKindStones
}

// ParseMaterialKind converts a raw string into a MaterialKind.
func ParseMaterialKind(value string) (MaterialKind, error) {
	for _, candidate := range validMaterialKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material kind %q", value)
}
