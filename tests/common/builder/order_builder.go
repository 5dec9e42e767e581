//go:build unit || e2e

package builder

import (
	"time"

	domorder "storefront/internal/domain/order"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	UserID         *uuid.UUID
	SessionID      *string
	Items          []domorder.Item
	Amounts        domorder.Amounts
	ShippingMethod string
	DiscountID     *uuid.UUID
	IntentID       string
	CreatedAt      time.Time
}

func NewOrderBuilder() *OrderBuilder {
	userID := uuid.New()
	return &OrderBuilder{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		UserID:   &userID,
		Items: []domorder.Item{
			{ProductID: uuid.New(), Name: "Test Product", SKU: "SKU-1", UnitPriceCents: 1000, Quantity: 2},
		},
		Amounts: domorder.Amounts{
			SubtotalCents: 2000,
			ShippingCents: 500,
			DiscountCents: 0,
			TaxCents:      200,
			TotalCents:    2700,
		},
		ShippingMethod: "standard",
		IntentID:       "pi_test",
		CreatedAt:      time.Now(),
	}
}

func (b *OrderBuilder) BuildDomain() (*domorder.Order, error) {
	o, err := domorder.NewOrder(b.TenantID, b.UserID, b.SessionID, b.Items, b.Amounts, b.ShippingMethod, b.DiscountID)
	if err != nil {
		return nil, err
	}
	o.AttachPaymentIntent(b.IntentID)
	return o, nil
}

// Fluent builder methods
func (b *OrderBuilder) WithTenantID(tenantID uuid.UUID) *OrderBuilder {
	b.TenantID = tenantID
	return b
}

func (b *OrderBuilder) WithUserID(userID uuid.UUID) *OrderBuilder {
	b.UserID = &userID
	b.SessionID = nil
	return b
}

func (b *OrderBuilder) AsGuest(sessionID string) *OrderBuilder {
	b.UserID = nil
	b.SessionID = &sessionID
	return b
}

func (b *OrderBuilder) WithDiscountID(discountID uuid.UUID) *OrderBuilder {
	b.DiscountID = &discountID
	return b
}

func (b *OrderBuilder) WithItem(item domorder.Item) *OrderBuilder {
	b.Items = append(b.Items, item)
	return b
}

func (b *OrderBuilder) WithAmounts(amounts domorder.Amounts) *OrderBuilder {
	b.Amounts = amounts
	return b
}
