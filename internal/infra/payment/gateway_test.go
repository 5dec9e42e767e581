//go:build unit

package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"storefront/internal/pkg/config"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func newGateway(t *testing.T) shared.PaymentGateway {
	t.Helper()
	return NewHMACGateway(config.PaymentConfig{
		WebhookSecret: "whsec_test",
		Currency:      "USD",
	})
}

func TestHMACGateway_VerifySignature(t *testing.T) {
	g := newGateway(t)
	payload := []byte(`{"id":"evt_1","type":"payment.succeeded"}`)

	t.Run("valid signature passes", func(t *testing.T) {
		assert.NoError(t, g.VerifySignature(payload, sign("whsec_test", payload)))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		err := g.VerifySignature(payload, sign("whsec_other", payload))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		sig := sign("whsec_test", payload)
		err := g.VerifySignature([]byte(`{"id":"evt_2"}`), sig)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestHMACGateway_ParseEvent(t *testing.T) {
	g := newGateway(t)

	t.Run("well formed event", func(t *testing.T) {
		orderID := uuid.New()
		payload := []byte(`{
			"id": "evt_1",
			"type": "payment.succeeded",
			"data": {
				"intent_id": "pi_abc",
				"order_id": "` + orderID.String() + `",
				"reference": "ch_123",
				"amount_cents": 2500
			}
		}`)

		ev, err := g.ParseEvent(payload)
		require.NoError(t, err)
		assert.Equal(t, "evt_1", ev.ID)
		assert.Equal(t, shared.EventPaymentSucceeded, ev.Type)
		assert.Equal(t, "pi_abc", ev.IntentID)
		assert.Equal(t, orderID, ev.OrderID)
		assert.Equal(t, "ch_123", ev.Reference)
		assert.Equal(t, int64(2500), ev.AmountCents)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := g.ParseEvent([]byte(`{not-json`))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("missing id or type", func(t *testing.T) {
		_, err := g.ParseEvent([]byte(`{"data":{"intent_id":"pi_1"}}`))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})
}

func TestHMACGateway_CreatePaymentIntent(t *testing.T) {
	g := newGateway(t)

	intent, err := g.CreatePaymentIntent(context.Background(), uuid.New(), 1999, "")
	require.NoError(t, err)
	assert.Contains(t, intent.ID, "pi_")
	assert.NotEmpty(t, intent.ClientSecret)
	assert.Equal(t, int64(1999), intent.AmountCents)
	assert.Equal(t, "USD", intent.Currency, "falls back to configured currency")
}
