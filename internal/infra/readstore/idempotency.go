package readstore

import (
	"context"

	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type IdempotencyReadStore struct {
	db db.DBTX
}

func NewIdempotencyReadStore(dbtx db.DBTX) *IdempotencyReadStore {
	return &IdempotencyReadStore{db: dbtx}
}

func (s *IdempotencyReadStore) Get(ctx context.Context, tenantID uuid.UUID, key string) (*shared.IdempotencyRecord, error) {
	const query = `
		SELECT tenant_id, key, status, request_hash, response_body, result_order_id, attempts, expires_at
		FROM idempotency_keys
		WHERE tenant_id = $1 AND key = $2`

	var rec shared.IdempotencyRecord
	err := s.db.QueryRow(ctx, query, tenantID, key).Scan(
		&rec.TenantID, &rec.Key, &rec.Status, &rec.RequestHash,
		&rec.ResponseBody, &rec.ResultOrderID, &rec.Attempts, &rec.ExpiresAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get idempotency key", err, infra.ClassifyPgErr(err))
	}
	return &rec, nil
}
