//go:build unit

package order_test

import (
	"testing"

	"storefront/internal/domain/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingOrder(t *testing.T) *order.Order {
	t.Helper()
	userID := uuid.New()
	o, err := order.NewOrder(
		uuid.New(),
		&userID,
		nil,
		[]order.Item{{ProductID: uuid.New(), Name: "Mug", SKU: "MUG-1", UnitPriceCents: 1200, Quantity: 2}},
		order.Amounts{SubtotalCents: 2400, ShippingCents: 500, TaxCents: 240, TotalCents: 3140},
		"standard",
		nil,
	)
	require.NoError(t, err)
	o.AttachPaymentIntent("pi_test")
	return o
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from order.Status
		to   order.Status
		want bool
	}{
		{"pending to confirmed", order.StatusPendingPayment, order.StatusConfirmed, true},
		{"pending to cancelled", order.StatusPendingPayment, order.StatusCancelled, true},
		{"confirmed is terminal", order.StatusConfirmed, order.StatusCancelled, false},
		{"cancelled is terminal", order.StatusCancelled, order.StatusConfirmed, false},
		{"no self transition", order.StatusPendingPayment, order.StatusPendingPayment, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewOrder_Validation(t *testing.T) {
	userID := uuid.New()

	t.Run("no items rejected", func(t *testing.T) {
		_, err := order.NewOrder(uuid.New(), &userID, nil, nil, order.Amounts{}, "standard", nil)
		assert.ErrorIs(t, err, order.ErrNoItems)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		items := []order.Item{{ProductID: uuid.New(), Quantity: 1}}
		_, err := order.NewOrder(uuid.New(), &userID, nil, items, order.Amounts{TotalCents: -1}, "standard", nil)
		assert.ErrorIs(t, err, order.ErrInvalidAmount)
	})
}

func TestOrder_ConfirmAndCancel(t *testing.T) {
	t.Run("confirm sets paid", func(t *testing.T) {
		o := pendingOrder(t)
		require.NoError(t, o.Confirm())
		assert.Equal(t, order.StatusConfirmed, o.Status())
		assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus())
	})

	t.Run("confirm twice fails", func(t *testing.T) {
		o := pendingOrder(t)
		require.NoError(t, o.Confirm())
		assert.ErrorIs(t, o.Confirm(), order.ErrInvalidTransition)
	})

	t.Run("cancel after confirm fails", func(t *testing.T) {
		o := pendingOrder(t)
		require.NoError(t, o.Confirm())
		assert.ErrorIs(t, o.Cancel(), order.ErrInvalidTransition)
	})
}

func TestOrder_RefundStatusFor(t *testing.T) {
	o := pendingOrder(t)

	assert.Equal(t, order.PaymentStatusPartiallyRefunded, o.RefundStatusFor(1000))
	assert.Equal(t, order.PaymentStatusRefunded, o.RefundStatusFor(o.Amounts().TotalCents))
}
