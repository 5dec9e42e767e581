package readstore

import (
	"context"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(dbtx db.DBTX) *CartReadStore {
	return &CartReadStore{db: dbtx}
}

type cartRow struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	userID     *uuid.UUID
	sessionID  *string
	discountID *uuid.UUID
	createdAt  time.Time
	updatedAt  time.Time
}

func (s *CartReadStore) FindByOwner(ctx context.Context, actor shared.Actor) (*cart.Cart, error) {
	const byUser = `
		SELECT id, tenant_id, user_id, session_id, discount_id, created_at, updated_at
		FROM carts WHERE tenant_id = $1 AND user_id = $2`
	const bySession = `
		SELECT id, tenant_id, user_id, session_id, discount_id, created_at, updated_at
		FROM carts WHERE tenant_id = $1 AND session_id = $2`

	var row cartRow
	var err error
	if actor.UserID != nil {
		err = s.db.QueryRow(ctx, byUser, actor.TenantID, *actor.UserID).Scan(
			&row.id, &row.tenantID, &row.userID, &row.sessionID, &row.discountID, &row.createdAt, &row.updatedAt)
	} else {
		err = s.db.QueryRow(ctx, bySession, actor.TenantID, actor.SessionID).Scan(
			&row.id, &row.tenantID, &row.userID, &row.sessionID, &row.discountID, &row.createdAt, &row.updatedAt)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart by owner", err, infra.ClassifyPgErr(err))
	}

	return s.load(ctx, row)
}

func (s *CartReadStore) FindByID(ctx context.Context, tenantID, cartID uuid.UUID) (*cart.Cart, error) {
	const query = `
		SELECT id, tenant_id, user_id, session_id, discount_id, created_at, updated_at
		FROM carts WHERE tenant_id = $1 AND id = $2`

	var row cartRow
	err := s.db.QueryRow(ctx, query, tenantID, cartID).Scan(
		&row.id, &row.tenantID, &row.userID, &row.sessionID, &row.discountID, &row.createdAt, &row.updatedAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart", err, infra.ClassifyPgErr(err))
	}

	return s.load(ctx, row)
}

func (s *CartReadStore) load(ctx context.Context, row cartRow) (*cart.Cart, error) {
	const itemsQuery = `
		SELECT product_id, variant_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at`

	rows, err := s.db.Query(ctx, itemsQuery, row.id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart items", err)
	}
	defer rows.Close()

	var items []cart.Item
	for rows.Next() {
		var item cart.Item
		if err := rows.Scan(&item.ProductID, &item.VariantID, &item.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart items", err)
	}

	return cart.ReconstructCart(
		row.id, row.tenantID, row.userID, row.sessionID, row.discountID,
		items, row.createdAt, row.updatedAt,
	), nil
}
