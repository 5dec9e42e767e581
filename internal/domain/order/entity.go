package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidAmount     = errors.New("order amounts cannot be negative")
	ErrNoItems           = errors.New("order must have at least one item")
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusCancelled      Status = "cancelled"
)

// CanTransitionTo encodes the order state machine. pending_payment is the
// only non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if s != StatusPendingPayment {
		return false
	}
	return next == StatusConfirmed || next == StatusCancelled
}

func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// Item freezes the catalog data at checkout time so later price or name
// changes never rewrite order history.
type Item struct {
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	Name           string
	SKU            string
	UnitPriceCents int64
	Quantity       int32
}

type Amounts struct {
	SubtotalCents int64
	ShippingCents int64
	DiscountCents int64
	TaxCents      int64
	TotalCents    int64
}

type Order struct {
	id               uuid.UUID
	tenantID         uuid.UUID
	userID           *uuid.UUID
	sessionID        *string
	status           Status
	paymentStatus    PaymentStatus
	paymentIntentID  *string
	paymentReference *string
	amounts          Amounts
	refundedCents    int64
	shippingMethod   string
	discountID       *uuid.UUID
	items            []Item
	createdAt        time.Time
	updatedAt        time.Time
}

func NewOrder(
	tenantID uuid.UUID,
	userID *uuid.UUID,
	sessionID *string,
	items []Item,
	amounts Amounts,
	shippingMethod string,
	discountID *uuid.UUID,
) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if amounts.SubtotalCents < 0 || amounts.ShippingCents < 0 ||
		amounts.DiscountCents < 0 || amounts.TaxCents < 0 || amounts.TotalCents < 0 {
		return nil, ErrInvalidAmount
	}

	return &Order{
		id:             uuid.New(),
		tenantID:       tenantID,
		userID:         userID,
		sessionID:      sessionID,
		status:         StatusPendingPayment,
		paymentStatus:  PaymentStatusPending,
		amounts:        amounts,
		shippingMethod: shippingMethod,
		discountID:     discountID,
		items:          items,
	}, nil
}

// AttachPaymentIntent records the provider intent once it exists; the intent
// is created after the order id so provider metadata can reference it.
func (o *Order) AttachPaymentIntent(intentID string) {
	o.paymentIntentID = &intentID
}

func ReconstructOrder(
	id, tenantID uuid.UUID,
	userID *uuid.UUID,
	sessionID *string,
	status Status,
	paymentStatus PaymentStatus,
	paymentIntentID, paymentReference *string,
	amounts Amounts,
	refundedCents int64,
	shippingMethod string,
	discountID *uuid.UUID,
	items []Item,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:               id,
		tenantID:         tenantID,
		userID:           userID,
		sessionID:        sessionID,
		status:           status,
		paymentStatus:    paymentStatus,
		paymentIntentID:  paymentIntentID,
		paymentReference: paymentReference,
		amounts:          amounts,
		refundedCents:    refundedCents,
		shippingMethod:   shippingMethod,
		discountID:       discountID,
		items:            items,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (o *Order) Confirm() error {
	if !o.status.CanTransitionTo(StatusConfirmed) {
		return ErrInvalidTransition
	}
	o.status = StatusConfirmed
	o.paymentStatus = PaymentStatusPaid
	return nil
}

func (o *Order) Cancel() error {
	if !o.status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	o.status = StatusCancelled
	return nil
}

// RefundStatusFor resolves the payment status a refund of amountCents moves
// the order to, given what was already refunded.
func (o *Order) RefundStatusFor(amountCents int64) PaymentStatus {
	if o.refundedCents+amountCents >= o.amounts.TotalCents {
		return PaymentStatusRefunded
	}
	return PaymentStatusPartiallyRefunded
}

func (o *Order) IsPendingPayment() bool {
	return o.status == StatusPendingPayment
}

func (o *Order) ID() uuid.UUID               { return o.id }
func (o *Order) TenantID() uuid.UUID         { return o.tenantID }
func (o *Order) UserID() *uuid.UUID          { return o.userID }
func (o *Order) SessionID() *string          { return o.sessionID }
func (o *Order) Status() Status              { return o.status }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) PaymentIntentID() *string    { return o.paymentIntentID }
func (o *Order) PaymentReference() *string   { return o.paymentReference }
func (o *Order) Amounts() Amounts            { return o.amounts }
func (o *Order) RefundedCents() int64        { return o.refundedCents }
func (o *Order) ShippingMethod() string      { return o.shippingMethod }
func (o *Order) DiscountID() *uuid.UUID      { return o.discountID }
func (o *Order) Items() []Item               { return o.items }
func (o *Order) CreatedAt() time.Time        { return o.createdAt }
func (o *Order) UpdatedAt() time.Time        { return o.updatedAt }
