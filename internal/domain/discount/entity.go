package discount

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSpec       = errors.New("discount must have exactly one of fixed amount or percentage")
	ErrInvalidPercent    = errors.New("percentage discount must be between 0 and 100")
	ErrInvalidAmount     = errors.New("discount amount cannot be negative")
	ErrInactive          = errors.New("discount is not active")
	ErrNotStarted        = errors.New("discount is not yet valid")
	ErrExpired           = errors.New("discount has expired")
	ErrUsageLimitReached = errors.New("discount usage limit reached")
	ErrMinPurchaseNotMet = errors.New("order subtotal below discount minimum")
)

type Discount struct {
	id               uuid.UUID
	code             string
	amountOffCents   *int64
	percentOff       *float64
	maxAmountCents   *int64
	minPurchaseCents int64
	usageLimit       *int32
	usageCount       int32
	startsAt         *time.Time
	endsAt           *time.Time
	active           bool
}

func NewDiscount(
	id uuid.UUID,
	code string,
	amountOffCents *int64,
	percentOff *float64,
	maxAmountCents *int64,
	minPurchaseCents int64,
	usageLimit *int32,
	usageCount int32,
	startsAt, endsAt *time.Time,
	active bool,
) (*Discount, error) {
	if (amountOffCents == nil) == (percentOff == nil) {
		return nil, ErrInvalidSpec
	}
	if amountOffCents != nil && *amountOffCents < 0 {
		return nil, ErrInvalidAmount
	}
	if percentOff != nil && (*percentOff < 0 || *percentOff > 100) {
		return nil, ErrInvalidPercent
	}

	return &Discount{
		id:               id,
		code:             code,
		amountOffCents:   amountOffCents,
		percentOff:       percentOff,
		maxAmountCents:   maxAmountCents,
		minPurchaseCents: minPurchaseCents,
		usageLimit:       usageLimit,
		usageCount:       usageCount,
		startsAt:         startsAt,
		endsAt:           endsAt,
		active:           active,
	}, nil
}

// ValidateUsage checks every redemption precondition against the clock and
// the order subtotal.
func (d *Discount) ValidateUsage(now time.Time, subtotalCents int64) error {
	if !d.active {
		return ErrInactive
	}
	if d.startsAt != nil && now.Before(*d.startsAt) {
		return ErrNotStarted
	}
	if d.endsAt != nil && now.After(*d.endsAt) {
		return ErrExpired
	}
	if d.usageLimit != nil && d.usageCount >= *d.usageLimit {
		return ErrUsageLimitReached
	}
	if subtotalCents < d.minPurchaseCents {
		return ErrMinPurchaseNotMet
	}
	return nil
}

// Apply computes the discount amount in cents. Fixed discounts are capped at
// the subtotal; percentage discounts round to the nearest cent and respect
// the optional maximum amount.
func (d *Discount) Apply(subtotalCents int64) int64 {
	var off int64

	switch {
	case d.amountOffCents != nil:
		off = *d.amountOffCents
	case d.percentOff != nil:
		off = decimal.NewFromInt(subtotalCents).
			Mul(decimal.NewFromFloat(*d.percentOff)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	}

	if d.maxAmountCents != nil && off > *d.maxAmountCents {
		off = *d.maxAmountCents
	}
	if off > subtotalCents {
		off = subtotalCents
	}
	if off < 0 {
		off = 0
	}
	return off
}

func (d *Discount) ID() uuid.UUID           { return d.id }
func (d *Discount) Code() string            { return d.code }
func (d *Discount) AmountOffCents() *int64  { return d.amountOffCents }
func (d *Discount) PercentOff() *float64    { return d.percentOff }
func (d *Discount) MaxAmountCents() *int64  { return d.maxAmountCents }
func (d *Discount) MinPurchaseCents() int64 { return d.minPurchaseCents }
func (d *Discount) UsageLimit() *int32      { return d.usageLimit }
func (d *Discount) UsageCount() int32       { return d.usageCount }
func (d *Discount) StartsAt() *time.Time    { return d.startsAt }
func (d *Discount) EndsAt() *time.Time      { return d.endsAt }
func (d *Discount) Active() bool            { return d.active }
