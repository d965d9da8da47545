// Package costing computes order totals. Everything here is pure; the order
// service persists the results.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Discount is the tagged discount specification applied to an order total.
type Discount struct {
	Type  enums.DiscountType
	Value decimal.Decimal
}

// PercentageDiscount builds a percentage discount spec.
func PercentageDiscount(value decimal.Decimal) Discount {
	return Discount{Type: enums.DiscountTypePercentage, Value: value}
}

// FlatDiscount builds a flat-amount discount spec.
func FlatDiscount(value decimal.Decimal) Discount {
	return Discount{Type: enums.DiscountTypeFlat, Value: value}
}

// Quote is the computed price breakdown for an order.
type Quote struct {
	TotalCost        decimal.Decimal `json:"total_cost"`
	DiscountedAmount decimal.Decimal `json:"discounted_amount"`
	FinalAmount      decimal.Decimal `json:"final_amount"`
}

// Compute derives the payable amount for quantityPcs units at unitPrice.
// Percentage discounts above 100 clamp to 100; flat discounts above the total
// clamp to the total. FinalAmount is always within [0, TotalCost].
func Compute(unitPrice decimal.Decimal, quantityPcs int, discount Discount) (Quote, error) {
	if unitPrice.IsNegative() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if quantityPcs <= 0 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !discount.Type.IsValid() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type").
			WithDetails(map[string]string{"discount_type": discount.Type.String()})
	}
	if discount.Value.IsNegative() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "discount value cannot be negative")
	}

	total := unitPrice.Mul(decimal.NewFromInt(int64(quantityPcs)))

	var discounted decimal.Decimal
	switch discount.Type {
	case enums.DiscountTypePercentage:
		pct := decimal.Min(discount.Value, hundred)
		discounted = total.Mul(pct).Div(hundred)
	default:
		discounted = decimal.Min(discount.Value, total)
	}

	return Quote{
		TotalCost:        total,
		DiscountedAmount: discounted,
		FinalAmount:      total.Sub(discounted),
	}, nil
}
