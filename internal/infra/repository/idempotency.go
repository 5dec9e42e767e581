package repository

import (
	"context"
	"time"

	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

// TryInsert registers the first sighting of a key. A concurrent duplicate
// inserts zero rows; callers follow up with Get to learn who won.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, key, requestHash string, expiresAt time.Time) (int64, error) {
	const query = `
		INSERT INTO idempotency_keys (tenant_id, key, status, request_hash, expires_at)
		VALUES ($1, $2, 'processing', $3, $4)
		ON CONFLICT (tenant_id, key) DO NOTHING`

	tag, err := tx.Exec(ctx, query, tenantID, key, requestHash, expiresAt)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to insert idempotency key", err)
	}
	return tag.RowsAffected(), nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, key string) (*shared.IdempotencyRecord, error) {
	const query = `
		SELECT tenant_id, key, status, request_hash, response_body, result_order_id, attempts, expires_at
		FROM idempotency_keys
		WHERE tenant_id = $1 AND key = $2`

	var rec shared.IdempotencyRecord
	err := tx.QueryRow(ctx, query, tenantID, key).Scan(
		&rec.TenantID, &rec.Key, &rec.Status, &rec.RequestHash,
		&rec.ResponseBody, &rec.ResultOrderID, &rec.Attempts, &rec.ExpiresAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get idempotency key", err, infra.ClassifyPgErr(err))
	}
	return &rec, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, key string, responseBody []byte, orderID uuid.UUID) error {
	const query = `
		UPDATE idempotency_keys
		SET status = 'completed', response_body = $3, result_order_id = $4, updated_at = now()
		WHERE tenant_id = $1 AND key = $2`

	tag, err := tx.Exec(ctx, query, tenantID, key, responseBody, orderID)
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *IdempotencyRepository) UpdateStatusFailed(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, key string) error {
	const query = `
		UPDATE idempotency_keys
		SET status = 'failed', updated_at = now()
		WHERE tenant_id = $1 AND key = $2`

	if _, err := tx.Exec(ctx, query, tenantID, key); err != nil {
		return infra.WrapRepoErr("failed to mark idempotency key failed", err)
	}
	return nil
}

// ClaimFailedKey flips a failed or expired record back to processing in one
// statement so exactly one retry wins.
func (r *IdempotencyRepository) ClaimFailedKey(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, key, requestHash string, expiresAt time.Time) (int64, error) {
	const query = `
		UPDATE idempotency_keys
		SET status = 'processing', request_hash = $3, response_body = NULL,
		    result_order_id = NULL, attempts = attempts + 1,
		    expires_at = $4, updated_at = now()
		WHERE tenant_id = $1 AND key = $2
		  AND (status = 'failed' OR expires_at < now())`

	tag, err := tx.Exec(ctx, query, tenantID, key, requestHash, expiresAt)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to claim idempotency key", err)
	}
	return tag.RowsAffected(), nil
}
