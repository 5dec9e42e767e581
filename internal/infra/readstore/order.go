package readstore

import (
	"context"
	"time"

	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

const orderColumns = `
	id, tenant_id, user_id, session_id, status, payment_status,
	payment_intent_id, payment_reference, discount_id,
	subtotal_cents, shipping_cents, discount_cents, tax_cents, total_cents,
	refunded_cents, shipping_method, created_at, updated_at`

type orderRow struct {
	id               uuid.UUID
	tenantID         uuid.UUID
	userID           *uuid.UUID
	sessionID        *string
	status           string
	paymentStatus    string
	paymentIntentID  *string
	paymentReference *string
	discountID       *uuid.UUID
	amounts          order.Amounts
	refundedCents    int64
	shippingMethod   string
	createdAt        time.Time
	updatedAt        time.Time
}

func (s *OrderReadStore) FindByID(ctx context.Context, tenantID, orderID uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = $1 AND id = $2`
	return s.findOne(ctx, query, tenantID, orderID)
}

func (s *OrderReadStore) FindByPaymentIntent(ctx context.Context, tenantID uuid.UUID, intentID string) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = $1 AND payment_intent_id = $2`
	return s.findOne(ctx, query, tenantID, intentID)
}

func (s *OrderReadStore) findOne(ctx context.Context, query string, args ...any) (*order.Order, error) {
	var row orderRow
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&row.id, &row.tenantID, &row.userID, &row.sessionID, &row.status, &row.paymentStatus,
		&row.paymentIntentID, &row.paymentReference, &row.discountID,
		&row.amounts.SubtotalCents, &row.amounts.ShippingCents, &row.amounts.DiscountCents,
		&row.amounts.TaxCents, &row.amounts.TotalCents,
		&row.refundedCents, &row.shippingMethod, &row.createdAt, &row.updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order", err, infra.ClassifyPgErr(err))
	}

	items, err := s.loadItems(ctx, row.id)
	if err != nil {
		return nil, err
	}

	return order.ReconstructOrder(
		row.id, row.tenantID, row.userID, row.sessionID,
		order.Status(row.status), order.PaymentStatus(row.paymentStatus),
		row.paymentIntentID, row.paymentReference,
		row.amounts, row.refundedCents, row.shippingMethod, row.discountID,
		items, row.createdAt, row.updatedAt,
	), nil
}

func (s *OrderReadStore) loadItems(ctx context.Context, orderID uuid.UUID) ([]order.Item, error) {
	const query = `
		SELECT product_id, variant_id, product_name, product_sku, unit_price_cents, quantity
		FROM order_items
		WHERE order_id = $1`

	rows, err := s.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order items", err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var item order.Item
		if err := rows.Scan(&item.ProductID, &item.VariantID, &item.Name, &item.SKU, &item.UnitPriceCents, &item.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order items", err)
	}
	return items, nil
}

// ListByOwner powers the order history query, newest first.
func (s *OrderReadStore) ListByOwner(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, sessionID *string, limit int32) ([]*order.Order, error) {
	const query = `
		SELECT id FROM orders
		WHERE tenant_id = $1
		  AND (($2::uuid IS NOT NULL AND user_id = $2) OR ($3::text IS NOT NULL AND session_id = $3))
		ORDER BY created_at DESC
		LIMIT $4`

	rows, err := s.db.Query(ctx, query, tenantID, userID, sessionID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate orders", err)
	}

	orders := make([]*order.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.FindByID(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
