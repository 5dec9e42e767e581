//go:build unit

package discount_test

import (
	"testing"
	"time"

	"storefront/internal/domain/discount"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func percentDiscount(t *testing.T, pct float64, maxCents *int64) *discount.Discount {
	t.Helper()
	d, err := discount.NewDiscount(uuid.New(), "SAVE", nil, &pct, maxCents, 0, nil, 0, nil, nil, true)
	require.NoError(t, err)
	return d
}

func fixedDiscount(t *testing.T, cents int64) *discount.Discount {
	t.Helper()
	d, err := discount.NewDiscount(uuid.New(), "OFF", &cents, nil, nil, 0, nil, 0, nil, nil, true)
	require.NoError(t, err)
	return d
}

func TestNewDiscount_SpecValidation(t *testing.T) {
	t.Run("both kinds rejected", func(t *testing.T) {
		_, err := discount.NewDiscount(uuid.New(), "X", ptr(int64(100)), ptr(10.0), nil, 0, nil, 0, nil, nil, true)
		assert.ErrorIs(t, err, discount.ErrInvalidSpec)
	})

	t.Run("neither kind rejected", func(t *testing.T) {
		_, err := discount.NewDiscount(uuid.New(), "X", nil, nil, nil, 0, nil, 0, nil, nil, true)
		assert.ErrorIs(t, err, discount.ErrInvalidSpec)
	})

	t.Run("percent out of range rejected", func(t *testing.T) {
		_, err := discount.NewDiscount(uuid.New(), "X", nil, ptr(101.0), nil, 0, nil, 0, nil, nil, true)
		assert.ErrorIs(t, err, discount.ErrInvalidPercent)
	})
}

func TestDiscount_ValidateUsage(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		mutate   func() *discount.Discount
		subtotal int64
		wantErr  error
	}{
		{
			"valid",
			func() *discount.Discount { return fixedDiscount(t, 100) },
			1000, nil,
		},
		{
			"inactive",
			func() *discount.Discount {
				d, _ := discount.NewDiscount(uuid.New(), "X", ptr(int64(100)), nil, nil, 0, nil, 0, nil, nil, false)
				return d
			},
			1000, discount.ErrInactive,
		},
		{
			"not started",
			func() *discount.Discount {
				d, _ := discount.NewDiscount(uuid.New(), "X", ptr(int64(100)), nil, nil, 0, nil, 0, ptr(now.Add(time.Hour)), nil, true)
				return d
			},
			1000, discount.ErrNotStarted,
		},
		{
			"expired",
			func() *discount.Discount {
				d, _ := discount.NewDiscount(uuid.New(), "X", ptr(int64(100)), nil, nil, 0, nil, 0, nil, ptr(now.Add(-time.Hour)), true)
				return d
			},
			1000, discount.ErrExpired,
		},
		{
			"usage limit reached",
			func() *discount.Discount {
				d, _ := discount.NewDiscount(uuid.New(), "X", ptr(int64(100)), nil, nil, 0, ptr(int32(5)), 5, nil, nil, true)
				return d
			},
			1000, discount.ErrUsageLimitReached,
		},
		{
			"below minimum purchase",
			func() *discount.Discount {
				d, _ := discount.NewDiscount(uuid.New(), "X", ptr(int64(100)), nil, nil, 2000, nil, 0, nil, nil, true)
				return d
			},
			1000, discount.ErrMinPurchaseNotMet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate().ValidateUsage(now, tt.subtotal)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDiscount_Apply(t *testing.T) {
	t.Run("percent with max cap", func(t *testing.T) {
		d := percentDiscount(t, 10, ptr(int64(5)))
		assert.Equal(t, int64(5), d.Apply(100), "10% of 100 is 10, capped at 5")
	})

	t.Run("percent without cap rounds to cent", func(t *testing.T) {
		d := percentDiscount(t, 10, nil)
		assert.Equal(t, int64(10), d.Apply(100))
		assert.Equal(t, int64(13), d.Apply(125), "12.5 rounds up")
	})

	t.Run("fixed capped at subtotal", func(t *testing.T) {
		d := fixedDiscount(t, 150)
		assert.Equal(t, int64(100), d.Apply(100))
	})

	t.Run("fixed below subtotal applies fully", func(t *testing.T) {
		d := fixedDiscount(t, 30)
		assert.Equal(t, int64(30), d.Apply(100))
	})
}
