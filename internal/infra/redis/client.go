package redis

import (
	"context"
	"time"

	"storefront/internal/pkg/config"
	"storefront/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

func Connect(cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errs.Wrap(err, "failed to connect to redis")
	}

	cleanup := func() {
		_ = client.Close()
	}

	return client, cleanup, nil
}
