package pricing

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownShippingMethod = errors.New("unknown shipping method")
	ErrInvalidTaxRate        = errors.New("tax rate must not be negative")
)

// Line is a priced cart line, joined against the catalog at quote time.
type Line struct {
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	Name           string
	SKU            string
	UnitPriceCents int64
	Quantity       int32
}

func (l Line) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

type Quote struct {
	SubtotalCents int64
	ShippingCents int64
	DiscountCents int64
	TaxCents      int64
	TotalCents    int64
}

func Subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.TotalCents()
	}
	return sum
}

// ShippingRate resolves a method name against the configured rate table.
func ShippingRate(rates map[string]int64, method string) (int64, error) {
	rate, ok := rates[method]
	if !ok {
		return 0, ErrUnknownShippingMethod
	}
	return rate, nil
}

// ComputeQuote assembles the order totals. Tax applies to the discounted
// subtotal, never to shipping, and rounds to the nearest cent.
func ComputeQuote(lines []Line, shippingCents, discountCents int64, taxRate decimal.Decimal) (Quote, error) {
	if taxRate.IsNegative() {
		return Quote{}, ErrInvalidTaxRate
	}

	subtotal := Subtotal(lines)
	if discountCents > subtotal {
		discountCents = subtotal
	}

	taxable := subtotal - discountCents
	tax := decimal.NewFromInt(taxable).Mul(taxRate).Round(0).IntPart()

	return Quote{
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		DiscountCents: discountCents,
		TaxCents:      tax,
		TotalCents:    taxable + shippingCents + tax,
	}, nil
}
