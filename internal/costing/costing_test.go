package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
)

func d(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func TestComputePercentageDiscount(t *testing.T) {
	t.Parallel()

	// design priced at 500, 10 pieces, 10% off
	quote, err := Compute(d("500"), 10, PercentageDiscount(d("10")))
	require.NoError(t, err)

	assert.True(t, quote.TotalCost.Equal(d("5000")), "total = %s", quote.TotalCost)
	assert.True(t, quote.DiscountedAmount.Equal(d("500")), "discounted = %s", quote.DiscountedAmount)
	assert.True(t, quote.FinalAmount.Equal(d("4500")), "final = %s", quote.FinalAmount)
}

func TestComputeFlatDiscount(t *testing.T) {
	t.Parallel()

	quote, err := Compute(d("120.50"), 2, FlatDiscount(d("41")))
	require.NoError(t, err)

	assert.True(t, quote.TotalCost.Equal(d("241")))
	assert.True(t, quote.DiscountedAmount.Equal(d("41")))
	assert.True(t, quote.FinalAmount.Equal(d("200")))
}

func TestComputeClampsPercentageAbove100(t *testing.T) {
	t.Parallel()

	quote, err := Compute(d("100"), 3, PercentageDiscount(d("250")))
	require.NoError(t, err)

	assert.True(t, quote.DiscountedAmount.Equal(d("300")))
	assert.True(t, quote.FinalAmount.IsZero())
}

func TestComputeClampsFlatAboveTotal(t *testing.T) {
	t.Parallel()

	quote, err := Compute(d("50"), 2, FlatDiscount(d("1000")))
	require.NoError(t, err)

	assert.True(t, quote.DiscountedAmount.Equal(d("100")))
	assert.True(t, quote.FinalAmount.IsZero(), "no negative invoices")
}

func TestComputeFinalAmountStaysWithinBounds(t *testing.T) {
	t.Parallel()

	prices := []string{"0", "0.01", "99.99", "1250"}
	discounts := []Discount{
		PercentageDiscount(d("0")),
		PercentageDiscount(d("33.33")),
		PercentageDiscount(d("100")),
		PercentageDiscount(d("9999")),
		FlatDiscount(d("0")),
		FlatDiscount(d("10")),
		FlatDiscount(d("123456")),
	}

	for _, price := range prices {
		for _, discount := range discounts {
			quote, err := Compute(d(price), 7, discount)
			require.NoError(t, err)
			assert.False(t, quote.FinalAmount.IsNegative(),
				"price=%s discount=%+v final=%s", price, discount, quote.FinalAmount)
			assert.True(t, quote.FinalAmount.LessThanOrEqual(quote.TotalCost),
				"price=%s discount=%+v final=%s total=%s", price, discount, quote.FinalAmount, quote.TotalCost)
		}
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := Compute(d("-1"), 1, FlatDiscount(d("0")))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = Compute(d("10"), 0, FlatDiscount(d("0")))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = Compute(d("10"), 5, Discount{Type: "bogus", Value: d("1")})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = Compute(d("10"), 5, FlatDiscount(d("-3")))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
