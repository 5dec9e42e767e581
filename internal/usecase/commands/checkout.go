package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/discount"
	"storefront/internal/domain/order"
	"storefront/internal/domain/pricing"
	reqdto "storefront/internal/handler/dto/request"
	"storefront/internal/infra"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart             = errs.New("cart is empty")
	ErrCheckoutInProgress    = errs.New("checkout already in progress for this key")
	ErrIdempotencyKeyReused  = errs.New("idempotency key reused with a different request")
	ErrUnknownShippingMethod = errs.New("unknown shipping method")
	ErrOrderNotFound         = errs.New("order not found")
	ErrPaymentGateway        = errs.New("payment gateway request failed")
)

type CheckoutResult struct {
	OrderID    uuid.UUID
	Response   json.RawMessage
	IsReplayed bool
}

// checkoutResponse is the payload stored with the idempotency record, so a
// replayed request returns byte-identical output.
type checkoutResponse struct {
	OrderID             uuid.UUID `json:"orderId"`
	Status              string    `json:"status"`
	SubtotalCents       int64     `json:"subtotalCents"`
	ShippingCents       int64     `json:"shippingCents"`
	DiscountCents       int64     `json:"discountCents"`
	TaxCents            int64     `json:"taxCents"`
	TotalCents          int64     `json:"totalCents"`
	Currency            string    `json:"currency"`
	PaymentIntentID     string    `json:"paymentIntentId"`
	PaymentClientSecret string    `json:"paymentClientSecret"`
}

type CheckoutCommands interface {
	InitiateCheckout(ctx context.Context, actor shared.Actor, req reqdto.CheckoutRequest, idempotencyKey *string) (*CheckoutResult, error)
	ConfirmOrder(ctx context.Context, tenantID, orderID uuid.UUID, paymentRef string) error
	CancelCheckout(ctx context.Context, tenantID, orderID uuid.UUID) error
	MarkPaymentFailed(ctx context.Context, tenantID, orderID uuid.UUID) error
	RecordRefund(ctx context.Context, tenantID, orderID uuid.UUID, amountCents int64, eventID string) error
}

type checkoutCommandsImpl struct {
	uow      shared.UnitOfWork
	engine   *ReservationEngine
	locks    shared.LockManager
	gateway  shared.PaymentGateway
	sessions shared.CheckoutSessionStore
	clock    clock.Clock
	payCfg   config.PaymentConfig
	cfg      config.CheckoutConfig
	taxRate  decimal.Decimal
}

func NewCheckoutCommands(
	uow shared.UnitOfWork,
	engine *ReservationEngine,
	locks shared.LockManager,
	gateway shared.PaymentGateway,
	sessions shared.CheckoutSessionStore,
	clk clock.Clock,
	payCfg config.PaymentConfig,
	cfg config.CheckoutConfig,
) (CheckoutCommands, error) {
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return nil, errs.Wrap(err, "invalid tax rate")
	}

	return &checkoutCommandsImpl{
		uow:      uow,
		engine:   engine,
		locks:    locks,
		gateway:  gateway,
		sessions: sessions,
		clock:    clk,
		payCfg:   payCfg,
		cfg:      cfg,
		taxRate:  taxRate,
	}, nil
}

func (c *checkoutCommandsImpl) InitiateCheckout(ctx context.Context, actor shared.Actor, req reqdto.CheckoutRequest, idempotencyKey *string) (*CheckoutResult, error) {
	requestHash := c.calculateRequestHash(actor, req)

	if idempotencyKey != nil {
		replay, err := c.handleIdempotency(ctx, actor.TenantID, *idempotencyKey, requestHash)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			return replay, nil
		}
	}

	result, err := c.placeOrder(ctx, actor, req, idempotencyKey)
	if err != nil && idempotencyKey != nil {
		c.markKeyFailed(ctx, actor.TenantID, *idempotencyKey)
	}
	return result, err
}

// handleIdempotency claims the key or resolves what the duplicate means.
// Returns a non-nil result when the stored response should be replayed.
func (c *checkoutCommandsImpl) handleIdempotency(ctx context.Context, tenantID uuid.UUID, key, requestHash string) (*CheckoutResult, error) {
	expiresAt := c.clock.Now().Add(c.cfg.IdempotencyKeyTTL)

	var inserted int64
	var record *shared.IdempotencyRecord
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		inserted, err = tx.Idempotency().TryInsert(ctx, tx.DB(), tenantID, key, requestHash, expiresAt)
		if err != nil {
			return err
		}
		record, err = tx.Idempotency().Get(ctx, tx.DB(), tenantID, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	if inserted > 0 {
		// This request owns the key.
		return nil, nil
	}

	switch record.Status {
	case shared.IdempotencyStatusCompleted:
		if record.RequestHash != requestHash {
			return nil, ErrIdempotencyKeyReused
		}
		return &CheckoutResult{
			OrderID:    derefOrderID(record.ResultOrderID),
			Response:   json.RawMessage(record.ResponseBody),
			IsReplayed: true,
		}, nil

	case shared.IdempotencyStatusProcessing:
		if record.RequestHash != requestHash {
			return nil, ErrIdempotencyKeyReused
		}
		return nil, ErrCheckoutInProgress

	case shared.IdempotencyStatusFailed:
		var claimed int64
		err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			var claimErr error
			claimed, claimErr = tx.Idempotency().ClaimFailedKey(ctx, tx.DB(), tenantID, key, requestHash, expiresAt)
			return claimErr
		})
		if err != nil {
			return nil, err
		}
		if claimed == 0 {
			return nil, ErrCheckoutInProgress
		}
		return nil, nil

	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

func (c *checkoutCommandsImpl) placeOrder(ctx context.Context, actor shared.Actor, req reqdto.CheckoutRequest, idempotencyKey *string) (*CheckoutResult, error) {
	now := c.clock.Now()

	current, err := c.uow.CommandReads().CartByOwner(ctx, actor)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if current.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines, reservations, err := c.priceCartLines(ctx, actor.TenantID, current)
	if err != nil {
		return nil, err
	}

	shippingCents, err := pricing.ShippingRate(c.cfg.ShippingRates, req.ShippingMethod)
	if err != nil {
		return nil, ErrUnknownShippingMethod
	}

	subtotal := pricing.Subtotal(lines)
	discountEntity, err := c.resolveDiscount(ctx, actor.TenantID, req.GetDiscountCode(), current, now, subtotal)
	if err != nil {
		return nil, err
	}

	var discountCents int64
	var discountID *uuid.UUID
	if discountEntity != nil {
		discountCents = discountEntity.Apply(subtotal)
		id := discountEntity.ID()
		discountID = &id
	}

	quote, err := pricing.ComputeQuote(lines, shippingCents, discountCents, c.taxRate)
	if err != nil {
		return nil, err
	}

	orderItems := make([]order.Item, len(lines))
	for i, l := range lines {
		orderItems[i] = order.Item{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Name:           l.Name,
			SKU:            l.SKU,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
		}
	}

	newOrder, err := order.NewOrder(
		actor.TenantID, actor.UserID, actor.SessionID,
		orderItems,
		order.Amounts{
			SubtotalCents: quote.SubtotalCents,
			ShippingCents: quote.ShippingCents,
			DiscountCents: quote.DiscountCents,
			TaxCents:      quote.TaxCents,
			TotalCents:    quote.TotalCents,
		},
		req.ShippingMethod,
		discountID,
	)
	if err != nil {
		return nil, err
	}

	// The intent exists before the transaction so a replayed request can
	// return the same client handle. A rollback strands the intent at the
	// provider, which expires it; that is logged, not compensated.
	intent, err := c.gateway.CreatePaymentIntent(ctx, newOrder.ID(), quote.TotalCents, c.payCfg.Currency)
	if err != nil {
		return nil, errs.Mark(err, ErrPaymentGateway)
	}
	newOrder.AttachPaymentIntent(intent.ID)

	response := checkoutResponse{
		OrderID:             newOrder.ID(),
		Status:              string(order.StatusPendingPayment),
		SubtotalCents:       quote.SubtotalCents,
		ShippingCents:       quote.ShippingCents,
		DiscountCents:       quote.DiscountCents,
		TaxCents:            quote.TaxCents,
		TotalCents:          quote.TotalCents,
		Currency:            intent.Currency,
		PaymentIntentID:     intent.ID,
		PaymentClientSecret: intent.ClientSecret,
	}
	responseBody, err := json.Marshal(response)
	if err != nil {
		return nil, errs.Wrap(err, "failed to marshal checkout response")
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := c.engine.Reserve(ctx, tx, actor.TenantID, reservations); err != nil {
			return err
		}

		if _, err := tx.Orders().Create(ctx, tx.DB(), newOrder); err != nil {
			return err
		}
		if err := tx.Orders().CreateItems(ctx, tx.DB(), newOrder.ID(), newOrder.Items()); err != nil {
			return err
		}

		if discountID != nil {
			changed, err := tx.Discounts().IncrementUsage(ctx, tx.DB(), *discountID)
			if err != nil {
				return err
			}
			if changed == 0 {
				return errs.Mark(discount.ErrUsageLimitReached, ErrInvalidDiscount)
			}
		}

		if idempotencyKey != nil {
			return tx.Idempotency().UpdateStatusCompleted(ctx, tx.DB(), actor.TenantID, *idempotencyKey, responseBody, newOrder.ID())
		}
		return nil
	})
	if err != nil {
		if stranded := intent.ID; stranded != "" {
			slog.Warn("payment intent stranded by failed checkout", "intent_id", stranded)
		}
		return nil, err
	}

	sess := shared.CheckoutSession{OrderID: newOrder.ID(), CartID: current.ID(), CreatedAt: now}
	if err := c.sessions.Create(ctx, actor.TenantID, sess, c.cfg.SessionTTL); err != nil {
		// Payment can still settle; confirm falls back to leaving the cart.
		slog.Warn("failed to store checkout session", "order_id", newOrder.ID(), "error", err.Error())
	}

	return &CheckoutResult{OrderID: newOrder.ID(), Response: responseBody}, nil
}

func (c *checkoutCommandsImpl) priceCartLines(ctx context.Context, tenantID uuid.UUID, current *cart.Cart) ([]pricing.Line, []ReservationLine, error) {
	reads := c.uow.CommandReads()

	lines := make([]pricing.Line, 0, len(current.Items()))
	reservations := make([]ReservationLine, 0, len(current.Items()))

	for _, item := range current.Items() {
		product, err := reads.ProductByID(ctx, tenantID, item.ProductID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, nil, ErrProductNotFound
			}
			return nil, nil, err
		}
		if !product.Active {
			return nil, nil, ErrProductInactive
		}

		stock, err := reads.StockByProduct(ctx, tenantID, item.ProductID, item.VariantID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, nil, ErrInsufficientStock
			}
			return nil, nil, err
		}

		lines = append(lines, pricing.Line{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           product.Name,
			SKU:            product.SKU,
			UnitPriceCents: product.UnitPriceCents,
			Quantity:       item.Quantity,
		})
		reservations = append(reservations, ReservationLine{
			UnitID:    stock.UnitID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	return lines, reservations, nil
}

func (c *checkoutCommandsImpl) resolveDiscount(ctx context.Context, tenantID uuid.UUID, code *string, current *cart.Cart, now time.Time, subtotalCents int64) (*discount.Discount, error) {
	reads := c.uow.CommandReads()

	var snap *shared.DiscountSnapshot
	var err error
	switch {
	case code != nil:
		snap, err = reads.DiscountByCode(ctx, tenantID, *code)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, ErrDiscountNotFound
			}
			return nil, err
		}
	case current.DiscountID() != nil:
		snap, err = reads.DiscountByID(ctx, tenantID, *current.DiscountID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				// A code removed from the catalog just stops applying.
				return nil, nil
			}
			return nil, err
		}
	default:
		return nil, nil
	}

	entity, err := discountFromSnapshot(snap)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidDiscount)
	}
	if err := entity.ValidateUsage(now, subtotalCents); err != nil {
		return nil, errs.Mark(err, ErrInvalidDiscount)
	}
	return entity, nil
}

// ConfirmOrder settles a paid order. Repeat invocations are no-ops; the
// conditional status flip decides exactly once who clears the cart.
func (c *checkoutCommandsImpl) ConfirmOrder(ctx context.Context, tenantID, orderID uuid.UUID, paymentRef string) error {
	sess, sessErr := c.sessions.Find(ctx, tenantID, orderID)
	if sessErr != nil {
		// Confirmation must not block on the session store; a transient
		// failure just leaves the cart for the owner to clear.
		if !errors.Is(sessErr, shared.ErrSessionNotFound) {
			slog.Warn("failed to load checkout session", "order_id", orderID, "error", sessErr.Error())
		}
		sess = nil
	}

	var confirmed bool
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		changed, err := tx.Orders().UpdateStatus(ctx, tx.DB(), orderID, order.StatusPendingPayment, order.StatusConfirmed)
		if err != nil {
			return err
		}
		if changed == 0 {
			return nil
		}
		confirmed = true

		ref := paymentRef
		if err := tx.Orders().UpdatePaymentStatus(ctx, tx.DB(), orderID, order.PaymentStatusPaid, &ref); err != nil {
			return err
		}

		if sess != nil {
			if err := tx.Carts().ClearItems(ctx, tx.DB(), sess.CartID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if confirmed {
		if err := c.sessions.Delete(ctx, tenantID, orderID); err != nil {
			slog.Warn("failed to delete checkout session", "order_id", orderID, "error", err.Error())
		}
	}
	return nil
}

// CancelCheckout releases the reservation and cancels the order. No-op when
// the order already left pending_payment.
func (c *checkoutCommandsImpl) CancelCheckout(ctx context.Context, tenantID, orderID uuid.UUID) error {
	var released bool
	var intentID *string

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		released, err = c.engine.Release(ctx, tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if !released {
			return nil
		}

		o, err := tx.Reads().OrderByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		intentID = o.PaymentIntentID()

		if o.DiscountID() != nil {
			return tx.Discounts().DecrementUsage(ctx, tx.DB(), *o.DiscountID())
		}
		return nil
	})
	if err != nil {
		return err
	}

	if released {
		if err := c.sessions.Delete(ctx, tenantID, orderID); err != nil {
			slog.Warn("failed to delete checkout session", "order_id", orderID, "error", err.Error())
		}
		if intentID != nil {
			if err := c.gateway.CancelIntent(ctx, *intentID); err != nil {
				slog.Warn("failed to cancel payment intent", "intent_id", *intentID, "error", err.Error())
			}
		}
	}
	return nil
}

// MarkPaymentFailed restores stock and flags the payment. Triggered by the
// provider's failure webhook.
func (c *checkoutCommandsImpl) MarkPaymentFailed(ctx context.Context, tenantID, orderID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		released, err := c.engine.Release(ctx, tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if !released {
			return nil
		}
		return tx.Orders().UpdatePaymentStatus(ctx, tx.DB(), orderID, order.PaymentStatusFailed, nil)
	})
}

// RecordRefund credits a provider refund against the order. Refunds
// accumulate, so redelivered events are matched by id and applied once.
func (c *checkoutCommandsImpl) RecordRefund(ctx context.Context, tenantID, orderID uuid.UUID, amountCents int64, eventID string) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := tx.Reads().OrderByID(ctx, tenantID, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if o.PaymentStatus() == order.PaymentStatusRefunded {
			return nil
		}

		if eventID != "" {
			inserted, err := tx.WebhookEvents().TryInsert(ctx, tx.DB(), tenantID, eventID)
			if err != nil {
				return err
			}
			if inserted == 0 {
				return nil
			}
		}

		return tx.Orders().AddRefund(ctx, tx.DB(), orderID, amountCents, o.RefundStatusFor(amountCents))
	})
}

func (c *checkoutCommandsImpl) markKeyFailed(ctx context.Context, tenantID uuid.UUID, key string) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().UpdateStatusFailed(ctx, tx.DB(), tenantID, key)
	})
	if err != nil {
		slog.Warn("failed to mark idempotency key failed", "key", key, "error", err.Error())
	}
}

func (c *checkoutCommandsImpl) calculateRequestHash(actor shared.Actor, req reqdto.CheckoutRequest) string {
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(append(data, []byte(actor.OwnerKey())...))
	return hex.EncodeToString(sum[:])
}

func discountFromSnapshot(snap *shared.DiscountSnapshot) (*discount.Discount, error) {
	return discount.NewDiscount(
		snap.ID, snap.Code,
		snap.AmountOffCents, snap.PercentOff, snap.MaxAmountCents,
		snap.MinPurchaseCents, snap.UsageLimit, snap.UsageCount,
		snap.StartsAt, snap.EndsAt, snap.Active,
	)
}

func derefOrderID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
