package repository

import (
	"context"

	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type InventoryRepository struct{}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{}
}

// StockForUpdate locks the stock row for the rest of the transaction.
// Concurrent reservations of the same unit queue here.
func (r *InventoryRepository) StockForUpdate(ctx context.Context, tx db.DBTX, tenantID, unitID uuid.UUID) (*shared.StockSnapshot, error) {
	const query = `
		SELECT id, product_id, variant_id, stock_quantity
		FROM inventory_units
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE`

	var snap shared.StockSnapshot
	err := tx.QueryRow(ctx, query, tenantID, unitID).
		Scan(&snap.UnitID, &snap.ProductID, &snap.VariantID, &snap.StockQuantity)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock stock row", err, infra.ClassifyPgErr(err))
	}
	return &snap, nil
}

func (r *InventoryRepository) AdjustStock(ctx context.Context, tx db.DBTX, unitID uuid.UUID, delta int32) error {
	const query = `
		UPDATE inventory_units
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, unitID, delta)
	if err != nil {
		return infra.WrapRepoErr("failed to adjust stock", err, infra.ClassifyPgErr(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("inventory unit not found", nil, infra.KindNotFound)
	}
	return nil
}
