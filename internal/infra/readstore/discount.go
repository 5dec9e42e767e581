package readstore

import (
	"context"

	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type DiscountReadStore struct {
	db db.DBTX
}

func NewDiscountReadStore(dbtx db.DBTX) *DiscountReadStore {
	return &DiscountReadStore{db: dbtx}
}

func (s *DiscountReadStore) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*shared.DiscountSnapshot, error) {
	const query = `
		SELECT id, code, amount_off_cents, percent_off, max_amount_cents,
		       min_purchase_cents, usage_limit, usage_count, starts_at, ends_at, active
		FROM discounts
		WHERE tenant_id = $1 AND code = $2`

	var snap shared.DiscountSnapshot
	err := s.db.QueryRow(ctx, query, tenantID, code).Scan(
		&snap.ID, &snap.Code, &snap.AmountOffCents, &snap.PercentOff, &snap.MaxAmountCents,
		&snap.MinPurchaseCents, &snap.UsageLimit, &snap.UsageCount,
		&snap.StartsAt, &snap.EndsAt, &snap.Active,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find discount", err, infra.ClassifyPgErr(err))
	}
	return &snap, nil
}

func (s *DiscountReadStore) FindByID(ctx context.Context, tenantID, discountID uuid.UUID) (*shared.DiscountSnapshot, error) {
	const query = `
		SELECT id, code, amount_off_cents, percent_off, max_amount_cents,
		       min_purchase_cents, usage_limit, usage_count, starts_at, ends_at, active
		FROM discounts
		WHERE tenant_id = $1 AND id = $2`

	var snap shared.DiscountSnapshot
	err := s.db.QueryRow(ctx, query, tenantID, discountID).Scan(
		&snap.ID, &snap.Code, &snap.AmountOffCents, &snap.PercentOff, &snap.MaxAmountCents,
		&snap.MinPurchaseCents, &snap.UsageLimit, &snap.UsageCount,
		&snap.StartsAt, &snap.EndsAt, &snap.Active,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find discount", err, infra.ClassifyPgErr(err))
	}
	return &snap, nil
}
