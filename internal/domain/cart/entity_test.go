//go:build unit

package cart_test

import (
	"testing"

	"storefront/internal/domain/cart"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserCart(t *testing.T) *cart.Cart {
	t.Helper()
	userID := uuid.New()
	c, err := cart.NewCart(uuid.New(), &userID, nil)
	require.NoError(t, err)
	return c
}

func TestNewCart_OwnerValidation(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	sessionID := "sess-1"

	tests := []struct {
		name      string
		userID    *uuid.UUID
		sessionID *string
		wantErr   error
	}{
		{"user owner", &userID, nil, nil},
		{"session owner", nil, &sessionID, nil},
		{"no owner", nil, nil, cart.ErrInvalidOwner},
		{"both owners", &userID, &sessionID, cart.ErrInvalidOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cart.NewCart(tenantID, tt.userID, tt.sessionID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCart_AddItem(t *testing.T) {
	t.Run("same product and variant merges into one line", func(t *testing.T) {
		c := newUserCart(t)
		productID := uuid.New()

		qty, err := c.AddItem(productID, nil, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(2), qty)

		qty, err = c.AddItem(productID, nil, 3)
		require.NoError(t, err)
		assert.Equal(t, int32(5), qty)
		assert.Len(t, c.Items(), 1)
	})

	t.Run("different variants stay separate lines", func(t *testing.T) {
		c := newUserCart(t)
		productID := uuid.New()
		variantID := uuid.New()

		_, err := c.AddItem(productID, nil, 1)
		require.NoError(t, err)
		_, err = c.AddItem(productID, &variantID, 1)
		require.NoError(t, err)

		assert.Len(t, c.Items(), 2)
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		c := newUserCart(t)
		_, err := c.AddItem(uuid.New(), nil, 0)
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	})
}

func TestCart_SetQuantityAndRemove(t *testing.T) {
	c := newUserCart(t)
	productID := uuid.New()
	_, err := c.AddItem(productID, nil, 2)
	require.NoError(t, err)

	require.NoError(t, c.SetQuantity(productID, nil, 7))
	assert.Equal(t, int32(7), c.QuantityOf(productID, nil))

	assert.ErrorIs(t, c.SetQuantity(uuid.New(), nil, 1), cart.ErrItemNotFound)
	assert.ErrorIs(t, c.RemoveItem(uuid.New(), nil), cart.ErrItemNotFound)

	require.NoError(t, c.RemoveItem(productID, nil))
	assert.True(t, c.IsEmpty())
}

func TestCart_MergeFrom(t *testing.T) {
	t.Run("matching lines sum, others move", func(t *testing.T) {
		user := newUserCart(t)
		sessionID := "sess-1"
		guest, err := cart.NewCart(user.TenantID(), nil, &sessionID)
		require.NoError(t, err)

		shared := uuid.New()
		guestOnly := uuid.New()

		_, err = user.AddItem(shared, nil, 2)
		require.NoError(t, err)
		_, err = guest.AddItem(shared, nil, 1)
		require.NoError(t, err)
		_, err = guest.AddItem(guestOnly, nil, 4)
		require.NoError(t, err)

		user.MergeFrom(guest)

		assert.Equal(t, int32(3), user.QuantityOf(shared, nil))
		assert.Equal(t, int32(4), user.QuantityOf(guestOnly, nil))
		assert.Len(t, user.Items(), 2)
	})

	t.Run("guest discount carried only when user cart has none", func(t *testing.T) {
		user := newUserCart(t)
		sessionID := "sess-1"
		guest, err := cart.NewCart(user.TenantID(), nil, &sessionID)
		require.NoError(t, err)

		guestDiscount := uuid.New()
		guest.SetDiscount(&guestDiscount)

		user.MergeFrom(guest)
		require.NotNil(t, user.DiscountID())
		assert.Equal(t, guestDiscount, *user.DiscountID())

		userDiscount := uuid.New()
		user.SetDiscount(&userDiscount)
		user.MergeFrom(guest)
		assert.Equal(t, userDiscount, *user.DiscountID())
	})
}
