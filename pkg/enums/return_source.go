package enums

import "fmt"

// ReturnSource records where returned materials originated.
type ReturnSource string

const (
	ReturnSourceOrder ReturnSource = "order"
	ReturnSourceOther ReturnSource = "other"
)

var validReturnSources = []ReturnSource{
	ReturnSourceOrder,
	ReturnSourceOther,
}

// String implements fmt.Stringer.
func (s ReturnSource) String() string {
	return string(s)
}

// IsValid reports whether the return source is recognized.
func (s ReturnSource) IsValid() bool {
	for _, candidate := range validReturnSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReturnSource converts a raw string into a ReturnSource.
func ParseReturnSource(value string) (ReturnSource, error) {
	for _, candidate := range validReturnSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return source %q", value)
}
