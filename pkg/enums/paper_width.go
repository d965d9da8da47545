package enums

import "fmt"

// PaperWidth is a tape-paper roll width in inches. Only the widths the shop
// stocks are valid.
type PaperWidth int

const (
	PaperWidth9  PaperWidth = 9
	PaperWidth13 PaperWidth = 13
	PaperWidth16 PaperWidth = 16
	PaperWidth19 PaperWidth = 19
	PaperWidth20 PaperWidth = 20
	PaperWidth24 PaperWidth = 24
)

var validPaperWidths = []PaperWidth{
	PaperWidth9,
	PaperWidth13,
	PaperWidth16,
	PaperWidth19,
	PaperWidth20,
	PaperWidth24,
}

// Int returns the width in inches.
func (w PaperWidth) Int() int {
	return int(w)
}

// IsValid reports whether the paper width is one the shop stocks.
func (w PaperWidth) IsValid() bool {
	for _, candidate := range validPaperWidths {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParsePaperWidth converts a raw inch count into a PaperWidth.
func ParsePaperWidth(value int) (PaperWidth, error) {
	for _, candidate := range validPaperWidths {
		if int(candidate) == value {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("invalid paper width %d", value)
}
