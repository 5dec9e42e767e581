package repository

import (
	"context"

	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type DiscountRepository struct{}

func NewDiscountRepository() *DiscountRepository {
	return &DiscountRepository{}
}

// IncrementUsage respects the usage limit at the database level so two
// concurrent checkouts cannot both take the last redemption.
func (r *DiscountRepository) IncrementUsage(ctx context.Context, tx db.DBTX, discountID uuid.UUID) (int64, error) {
	const query = `
		UPDATE discounts
		SET usage_count = usage_count + 1
		WHERE id = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)`

	tag, err := tx.Exec(ctx, query, discountID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to increment discount usage", err)
	}
	return tag.RowsAffected(), nil
}

func (r *DiscountRepository) DecrementUsage(ctx context.Context, tx db.DBTX, discountID uuid.UUID) error {
	const query = `
		UPDATE discounts
		SET usage_count = GREATEST(usage_count - 1, 0)
		WHERE id = $1`

	if _, err := tx.Exec(ctx, query, discountID); err != nil {
		return infra.WrapRepoErr("failed to decrement discount usage", err)
	}
	return nil
}
