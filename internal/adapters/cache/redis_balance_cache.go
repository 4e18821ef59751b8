package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const balanceKey = "agency:balance:default"

// RedisBalanceCache holds the last Cyclos float-account balance for a short
// TTL so the balance gate does not call the payment API on every submission.
type RedisBalanceCache struct {
	client *redis.Client
}

func NewRedisBalanceCache(client *redis.Client) *RedisBalanceCache {
	return &RedisBalanceCache{client: client}
}

func (c *RedisBalanceCache) Get(ctx context.Context) (float64, bool, error) {
	raw, err := c.client.Get(ctx, balanceKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	balance, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

func (c *RedisBalanceCache) Set(ctx context.Context, balance float64, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return c.client.Set(ctx, balanceKey, strconv.FormatFloat(balance, 'f', -1, 64), ttl).Err()
}
