package repository

import (
	"context"

	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type WebhookEventRepository struct{}

func NewWebhookEventRepository() *WebhookEventRepository {
	return &WebhookEventRepository{}
}

// TryInsert claims a provider event id. A redelivered event inserts zero
// rows, so the caller skips its effect.
func (r *WebhookEventRepository) TryInsert(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, eventID string) (int64, error) {
	const query = `
		INSERT INTO webhook_events (tenant_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (tenant_id, event_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query, tenantID, eventID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to insert webhook event", err)
	}
	return tag.RowsAffected(), nil
}
