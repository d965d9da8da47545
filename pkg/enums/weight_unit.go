package enums

import "fmt"

// WeightUnit is the unit a stone quantity is recorded in.
type WeightUnit string

const (
	WeightUnitGram     WeightUnit = "g"
	WeightUnitKilogram WeightUnit = "kg"
)

var validWeightUnits = []WeightUnit{
	WeightUnitGram,
	WeightUnitKilogram,
}

// String implements fmt.Stringer.
func (u WeightUnit) String() string {
	return string(u)
}

// IsValid reports whether the weight unit is recognized.
func (u WeightUnit) IsValid() bool {
	for _, candidate := range validWeightUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseWeightUnit converts a raw string into a WeightUnit.
func ParseWeightUnit(value string) (WeightUnit, error) {
	for _, candidate := range validWeightUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid weight unit %q", value)
}
