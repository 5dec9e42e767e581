package shared

import (
	"context"
	"time"

	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

// LockManager is an advisory TTL lock. Acquire returns false without error
// when the key is already held; Release is a no-op unless the token matches
// the current holder.
type LockManager interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
}

type PaymentEvent struct {
	ID          string
	Type        string
	IntentID    string
	OrderID     uuid.UUID
	Reference   string
	AmountCents int64
}

const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventPaymentCanceled  = "payment.canceled"
	EventPaymentRefunded  = "payment.refunded"
)

// PaymentGateway is the outbound port to the payment provider.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, orderID uuid.UUID, amountCents int64, currency string) (*PaymentIntent, error)
	CancelIntent(ctx context.Context, intentID string) error
	Refund(ctx context.Context, intentID string, amountCents int64) error
	VerifySignature(payload []byte, signature string) error
	ParseEvent(payload []byte) (*PaymentEvent, error)
}

type CheckoutSession struct {
	OrderID   uuid.UUID
	CartID    uuid.UUID
	CreatedAt time.Time
}

// ErrSessionNotFound distinguishes an expired or missing session from a
// store failure; only the former is an expected fallback.
var ErrSessionNotFound = errs.New("checkout session not found")

// CheckoutSessionStore remembers which cart produced a pending order so the
// cart can be cleared exactly once when payment settles.
type CheckoutSessionStore interface {
	Create(ctx context.Context, tenantID uuid.UUID, session CheckoutSession, ttl time.Duration) error
	Find(ctx context.Context, tenantID, orderID uuid.UUID) (*CheckoutSession, error)
	Delete(ctx context.Context, tenantID, orderID uuid.UUID) error
}
