package repository

import (
	"context"

	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Create(ctx context.Context, tx db.DBTX, o *order.Order) (uuid.UUID, error) {
	const query = `
		INSERT INTO orders (
			id, tenant_id, user_id, session_id, status, payment_status,
			payment_intent_id, discount_id, subtotal_cents, shipping_cents,
			discount_cents, tax_cents, total_cents, shipping_method
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	a := o.Amounts()
	_, err := tx.Exec(ctx, query,
		o.ID(), o.TenantID(), o.UserID(), o.SessionID(), o.Status(), o.PaymentStatus(),
		o.PaymentIntentID(), o.DiscountID(), a.SubtotalCents, a.ShippingCents,
		a.DiscountCents, a.TaxCents, a.TotalCents, o.ShippingMethod(),
	)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create order", err, infra.ClassifyPgErr(err))
	}
	return o.ID(), nil
}

func (r *OrderRepository) CreateItems(ctx context.Context, tx db.DBTX, orderID uuid.UUID, items []order.Item) error {
	const query = `
		INSERT INTO order_items (order_id, product_id, variant_id, product_name, product_sku, unit_price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range items {
		_, err := tx.Exec(ctx, query,
			orderID, item.ProductID, item.VariantID, item.Name, item.SKU, item.UnitPriceCents, item.Quantity)
		if err != nil {
			return infra.WrapRepoErr("failed to create order item", err, infra.ClassifyPgErr(err))
		}
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, tx db.DBTX, orderID uuid.UUID, fromStatus, toStatus order.Status) (int64, error) {
	const query = `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`

	tag, err := tx.Exec(ctx, query, orderID, fromStatus, toStatus)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to update order status", err)
	}
	return tag.RowsAffected(), nil
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, tx db.DBTX, orderID uuid.UUID, status order.PaymentStatus, reference *string) error {
	const query = `
		UPDATE orders
		SET payment_status = $2,
		    payment_reference = COALESCE($3, payment_reference),
		    updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, orderID, status, reference)
	if err != nil {
		return infra.WrapRepoErr("failed to update payment status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *OrderRepository) AddRefund(ctx context.Context, tx db.DBTX, orderID uuid.UUID, amountCents int64, status order.PaymentStatus) error {
	const query = `
		UPDATE orders
		SET refunded_cents = refunded_cents + $2,
		    payment_status = $3,
		    updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, orderID, amountCents, status)
	if err != nil {
		return infra.WrapRepoErr("failed to record refund", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return nil
}
