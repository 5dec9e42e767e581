package repository

import (
	"context"

	"storefront/internal/domain/cart"
	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

func (r *CartRepository) Create(ctx context.Context, tx db.DBTX, c *cart.Cart) (uuid.UUID, error) {
	const query = `
		INSERT INTO carts (id, tenant_id, user_id, session_id, discount_id)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, c.ID(), c.TenantID(), c.UserID(), c.SessionID(), c.DiscountID())
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create cart", err, infra.ClassifyPgErr(err))
	}

	for _, item := range c.Items() {
		if err := r.UpsertItem(ctx, tx, c.ID(), item); err != nil {
			return uuid.Nil, err
		}
	}

	return c.ID(), nil
}

func (r *CartRepository) UpsertItem(ctx context.Context, tx db.DBTX, cartID uuid.UUID, item cart.Item) error {
	const query = `
		INSERT INTO cart_items (cart_id, product_id, variant_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id, COALESCE(variant_id, '00000000-0000-0000-0000-000000000000'::uuid))
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`

	_, err := tx.Exec(ctx, query, cartID, item.ProductID, item.VariantID, item.Quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to upsert cart item", err, infra.ClassifyPgErr(err))
	}
	return nil
}

func (r *CartRepository) SetItemQuantity(ctx context.Context, tx db.DBTX, cartID, productID uuid.UUID, variantID *uuid.UUID, quantity int32) error {
	const query = `
		UPDATE cart_items
		SET quantity = $4, updated_at = now()
		WHERE cart_id = $1 AND product_id = $2
		  AND COALESCE(variant_id, '00000000-0000-0000-0000-000000000000'::uuid)
		    = COALESCE($3, '00000000-0000-0000-0000-000000000000'::uuid)`

	tag, err := tx.Exec(ctx, query, cartID, productID, variantID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to update cart item quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("cart item not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, tx db.DBTX, cartID, productID uuid.UUID, variantID *uuid.UUID) error {
	const query = `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
		  AND COALESCE(variant_id, '00000000-0000-0000-0000-000000000000'::uuid)
		    = COALESCE($3, '00000000-0000-0000-0000-000000000000'::uuid)`

	tag, err := tx.Exec(ctx, query, cartID, productID, variantID)
	if err != nil {
		return infra.WrapRepoErr("failed to remove cart item", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("cart item not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *CartRepository) ClearItems(ctx context.Context, tx db.DBTX, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return infra.WrapRepoErr("failed to clear cart items", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET discount_id = NULL, updated_at = now() WHERE id = $1`, cartID); err != nil {
		return infra.WrapRepoErr("failed to clear cart discount", err)
	}
	return nil
}

func (r *CartRepository) SetDiscount(ctx context.Context, tx db.DBTX, cartID uuid.UUID, discountID *uuid.UUID) error {
	const query = `UPDATE carts SET discount_id = $2, updated_at = now() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, cartID, discountID)
	if err != nil {
		return infra.WrapRepoErr("failed to set cart discount", err, infra.ClassifyPgErr(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("cart not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, tx db.DBTX, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return infra.WrapRepoErr("failed to delete cart", err)
	}
	return nil
}

func (r *CartRepository) Touch(ctx context.Context, tx db.DBTX, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
		return infra.WrapRepoErr("failed to touch cart", err)
	}
	return nil
}
