package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCheckoutSessionStore struct {
	client *redis.Client
}

func NewRedisCheckoutSessionStore(client *redis.Client) shared.CheckoutSessionStore {
	return &RedisCheckoutSessionStore{client: client}
}

func sessionKey(tenantID, orderID uuid.UUID) string {
	return "checkout:" + tenantID.String() + ":" + orderID.String()
}

func (s *RedisCheckoutSessionStore) Create(ctx context.Context, tenantID uuid.UUID, sess shared.CheckoutSession, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return errs.Wrap(err, "failed to marshal checkout session")
	}
	if err := s.client.Set(ctx, sessionKey(tenantID, sess.OrderID), payload, ttl).Err(); err != nil {
		return errs.Wrap(err, "failed to store checkout session")
	}
	return nil
}

func (s *RedisCheckoutSessionStore) Find(ctx context.Context, tenantID, orderID uuid.UUID) (*shared.CheckoutSession, error) {
	raw, err := s.client.Get(ctx, sessionKey(tenantID, orderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrSessionNotFound
		}
		return nil, errs.Wrap(err, "failed to load checkout session")
	}

	var sess shared.CheckoutSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshal checkout session")
	}
	return &sess, nil
}

func (s *RedisCheckoutSessionStore) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(tenantID, orderID)).Err(); err != nil {
		return errs.Wrap(err, "failed to delete checkout session")
	}
	return nil
}
