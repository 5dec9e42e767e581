//go:build unit || e2e

package builder

import (
	"time"

	domdiscount "storefront/internal/domain/discount"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type DiscountBuilder struct {
	ID               uuid.UUID
	Code             string
	AmountOffCents   *int64
	PercentOff       *float64
	MaxAmountCents   *int64
	MinPurchaseCents int64
	UsageLimit       *int32
	UsageCount       int32
	StartsAt         *time.Time
	EndsAt           *time.Time
	Active           bool
}

func NewDiscountBuilder() *DiscountBuilder {
	amountOff := int64(500)
	return &DiscountBuilder{
		ID:             uuid.New(),
		Code:           "SAVE5",
		AmountOffCents: &amountOff,
		Active:         true,
	}
}

func (b *DiscountBuilder) BuildDomain() (*domdiscount.Discount, error) {
	return domdiscount.NewDiscount(
		b.ID, b.Code,
		b.AmountOffCents, b.PercentOff, b.MaxAmountCents,
		b.MinPurchaseCents, b.UsageLimit, b.UsageCount,
		b.StartsAt, b.EndsAt, b.Active,
	)
}

func (b *DiscountBuilder) BuildSnapshot() *shared.DiscountSnapshot {
	return &shared.DiscountSnapshot{
		ID:               b.ID,
		Code:             b.Code,
		AmountOffCents:   b.AmountOffCents,
		PercentOff:       b.PercentOff,
		MaxAmountCents:   b.MaxAmountCents,
		MinPurchaseCents: b.MinPurchaseCents,
		UsageLimit:       b.UsageLimit,
		UsageCount:       b.UsageCount,
		StartsAt:         b.StartsAt,
		EndsAt:           b.EndsAt,
		Active:           b.Active,
	}
}

// Fluent builder methods
func (b *DiscountBuilder) WithCode(code string) *DiscountBuilder {
	b.Code = code
	return b
}

func (b *DiscountBuilder) AsPercent(percent float64) *DiscountBuilder {
	b.AmountOffCents = nil
	b.PercentOff = &percent
	return b
}

func (b *DiscountBuilder) WithAmountOff(cents int64) *DiscountBuilder {
	amount := cents
	b.AmountOffCents = &amount
	b.PercentOff = nil
	return b
}

func (b *DiscountBuilder) WithMaxAmount(cents int64) *DiscountBuilder {
	b.MaxAmountCents = &cents
	return b
}

func (b *DiscountBuilder) WithMinPurchase(cents int64) *DiscountBuilder {
	b.MinPurchaseCents = cents
	return b
}

func (b *DiscountBuilder) WithUsageLimit(limit, used int32) *DiscountBuilder {
	b.UsageLimit = &limit
	b.UsageCount = used
	return b
}

func (b *DiscountBuilder) Expired() *DiscountBuilder {
	past := time.Now().Add(-time.Hour)
	b.EndsAt = &past
	return b
}

func (b *DiscountBuilder) Inactive() *DiscountBuilder {
	b.Active = false
	return b
}
