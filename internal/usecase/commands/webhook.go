package commands

import (
	"context"
	"log/slog"

	"storefront/internal/infra"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidWebhookSignature = errs.New("invalid webhook signature")
	ErrMalformedWebhookEvent   = errs.New("malformed webhook event")
)

// WebhookCommands reconciles provider payment events with order state. Every
// handler tolerates redelivery: status transitions are conditional, and
// cumulative effects (refunds) are matched by event id.
type WebhookCommands interface {
	HandleEvent(ctx context.Context, tenantID uuid.UUID, payload []byte, signature string) error
}

type webhookCommandsImpl struct {
	uow      shared.UnitOfWork
	gateway  shared.PaymentGateway
	checkout CheckoutCommands
}

func NewWebhookCommands(uow shared.UnitOfWork, gateway shared.PaymentGateway, checkout CheckoutCommands) WebhookCommands {
	return &webhookCommandsImpl{
		uow:      uow,
		gateway:  gateway,
		checkout: checkout,
	}
}

func (w *webhookCommandsImpl) HandleEvent(ctx context.Context, tenantID uuid.UUID, payload []byte, signature string) error {
	// Signature first; the payload is untrusted until then.
	if err := w.gateway.VerifySignature(payload, signature); err != nil {
		return errs.Mark(err, ErrInvalidWebhookSignature)
	}

	event, err := w.gateway.ParseEvent(payload)
	if err != nil {
		return errs.Mark(err, ErrMalformedWebhookEvent)
	}

	orderID, err := w.resolveOrderID(ctx, tenantID, event)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// The order may belong to another deployment sharing the
			// provider account. Acknowledge and move on.
			slog.Warn("webhook event for unknown order",
				"event_id", event.ID, "event_type", event.Type, "intent_id", event.IntentID)
			return nil
		}
		return err
	}

	switch event.Type {
	case shared.EventPaymentSucceeded:
		return w.checkout.ConfirmOrder(ctx, tenantID, orderID, event.Reference)

	case shared.EventPaymentFailed:
		return w.checkout.MarkPaymentFailed(ctx, tenantID, orderID)

	case shared.EventPaymentCanceled:
		return w.checkout.CancelCheckout(ctx, tenantID, orderID)

	case shared.EventPaymentRefunded:
		return w.checkout.RecordRefund(ctx, tenantID, orderID, event.AmountCents, event.ID)

	default:
		slog.Info("ignoring unhandled webhook event", "event_id", event.ID, "event_type", event.Type)
		return nil
	}
}

func (w *webhookCommandsImpl) resolveOrderID(ctx context.Context, tenantID uuid.UUID, event *shared.PaymentEvent) (uuid.UUID, error) {
	if event.OrderID != uuid.Nil {
		return event.OrderID, nil
	}
	if event.IntentID == "" {
		return uuid.Nil, errs.Mark(errs.New("event carries neither order id nor intent id"), ErrMalformedWebhookEvent)
	}

	o, err := w.uow.CommandReads().OrderByPaymentIntent(ctx, tenantID, event.IntentID)
	if err != nil {
		return uuid.Nil, err
	}
	return o.ID(), nil
}
