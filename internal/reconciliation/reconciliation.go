// Package reconciliation compares expected material consumption against the
// physically measured final weight. Pure functions; persistence belongs to
// the order service.
package reconciliation

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// StoneLine is one expected stone consumption in grams.
type StoneLine struct {
	QuantityGrams decimal.Decimal
}

// PaperUsage is the expected tape-paper consumption.
type PaperUsage struct {
	QuantityPcs    int
	WeightPerPiece decimal.Decimal
}

// Discrepancy is the outcome of comparing calculated and measured weight.
// Positive weight means more material was consumed than expected (loss),
// negative means under-consumption (surplus). The sign is preserved for
// reporting.
type Discrepancy struct {
	Weight     decimal.Decimal `json:"weight"`
	Percentage decimal.Decimal `json:"percentage"`
}

// CalculatedWeight sums the expected stone grams and paper weight.
func CalculatedWeight(stones []StoneLine, paper PaperUsage) (decimal.Decimal, error) {
	if paper.QuantityPcs < 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "paper quantity cannot be negative")
	}
	if paper.WeightPerPiece.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "paper weight per piece cannot be negative")
	}

	total := paper.WeightPerPiece.Mul(decimal.NewFromInt(int64(paper.QuantityPcs)))
	for _, line := range stones {
		if line.QuantityGrams.IsNegative() {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "stone quantity cannot be negative")
		}
		total = total.Add(line.QuantityGrams)
	}
	return total, nil
}

// Reconcile derives the discrepancy between the calculated weight and the
// measured final weight. A zero calculated weight yields a zero percentage
// rather than a division error.
func Reconcile(calculated, finalTotal decimal.Decimal) Discrepancy {
	diff := finalTotal.Sub(calculated)
	if calculated.IsZero() {
		return Discrepancy{Weight: diff, Percentage: decimal.Zero}
	}
	return Discrepancy{
		Weight:     diff,
		Percentage: diff.Div(calculated).Mul(hundred),
	}
}
