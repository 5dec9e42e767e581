package readstore

import (
	"context"

	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type ProductReadStore struct {
	db db.DBTX
}

func NewProductReadStore(dbtx db.DBTX) *ProductReadStore {
	return &ProductReadStore{db: dbtx}
}

func (s *ProductReadStore) FindByID(ctx context.Context, tenantID, productID uuid.UUID) (*shared.ProductSnapshot, error) {
	const query = `
		SELECT id, name, sku, price_cents, active
		FROM products
		WHERE tenant_id = $1 AND id = $2`

	var snap shared.ProductSnapshot
	err := s.db.QueryRow(ctx, query, tenantID, productID).
		Scan(&snap.ID, &snap.Name, &snap.SKU, &snap.UnitPriceCents, &snap.Active)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find product", err, infra.ClassifyPgErr(err))
	}
	return &snap, nil
}

// StockByProduct is the unlocked availability read used by cart mutations.
// Reservation takes the locked path instead.
func (s *ProductReadStore) StockByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (*shared.StockSnapshot, error) {
	const query = `
		SELECT id, product_id, variant_id, stock_quantity
		FROM inventory_units
		WHERE tenant_id = $1 AND product_id = $2
		  AND COALESCE(variant_id, '00000000-0000-0000-0000-000000000000'::uuid)
		    = COALESCE($3, '00000000-0000-0000-0000-000000000000'::uuid)`

	var snap shared.StockSnapshot
	err := s.db.QueryRow(ctx, query, tenantID, productID, variantID).
		Scan(&snap.UnitID, &snap.ProductID, &snap.VariantID, &snap.StockQuantity)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find inventory unit", err, infra.ClassifyPgErr(err))
	}
	return &snap, nil
}
