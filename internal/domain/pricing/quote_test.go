//go:build unit

package pricing_test

import (
	"testing"

	"storefront/internal/domain/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(unitPriceCents int64, qty int32) pricing.Line {
	return pricing.Line{ProductID: uuid.New(), UnitPriceCents: unitPriceCents, Quantity: qty}
}

func TestComputeQuote(t *testing.T) {
	rate := decimal.RequireFromString("0.10")

	t.Run("tax applies to discounted subtotal, not shipping", func(t *testing.T) {
		q, err := pricing.ComputeQuote(
			[]pricing.Line{line(1000, 2), line(500, 1)},
			500, 500, rate,
		)
		require.NoError(t, err)

		assert.Equal(t, int64(2500), q.SubtotalCents)
		assert.Equal(t, int64(500), q.DiscountCents)
		assert.Equal(t, int64(200), q.TaxCents, "10% of 2000")
		assert.Equal(t, int64(2700), q.TotalCents)
	})

	t.Run("discount larger than subtotal clamps to zero taxable", func(t *testing.T) {
		q, err := pricing.ComputeQuote([]pricing.Line{line(100, 1)}, 0, 500, rate)
		require.NoError(t, err)

		assert.Equal(t, int64(100), q.DiscountCents)
		assert.Equal(t, int64(0), q.TaxCents)
		assert.Equal(t, int64(0), q.TotalCents)
	})

	t.Run("tax rounds to nearest cent", func(t *testing.T) {
		// 105 * 0.07 = 7.35, rounds to 7
		q, err := pricing.ComputeQuote([]pricing.Line{line(105, 1)}, 0, 0, decimal.RequireFromString("0.07"))
		require.NoError(t, err)
		assert.Equal(t, int64(7), q.TaxCents)

		// 125 * 0.10 = 12.5, rounds to 13
		q, err = pricing.ComputeQuote([]pricing.Line{line(125, 1)}, 0, 0, rate)
		require.NoError(t, err)
		assert.Equal(t, int64(13), q.TaxCents)
	})

	t.Run("negative tax rate rejected", func(t *testing.T) {
		_, err := pricing.ComputeQuote([]pricing.Line{line(100, 1)}, 0, 0, decimal.RequireFromString("-0.01"))
		assert.ErrorIs(t, err, pricing.ErrInvalidTaxRate)
	})
}

func TestShippingRate(t *testing.T) {
	rates := map[string]int64{"standard": 500, "express": 1500}

	got, err := pricing.ShippingRate(rates, "express")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got)

	_, err = pricing.ShippingRate(rates, "drone")
	assert.ErrorIs(t, err, pricing.ErrUnknownShippingMethod)
}
