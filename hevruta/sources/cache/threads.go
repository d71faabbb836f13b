package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hevruta/hevruta/config"
	"hevruta/hevruta/utils/types"

	redisv9 "github.com/redis/go-redis/v9"
)

// threadsKeyVersion is bumped whenever the cached payload shape changes,
// orphaning stale entries instead of migrating them.
const threadsKeyVersion = "v2"

type ThreadCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewThreadCache(cfg config.Config, ttl time.Duration) *ThreadCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	client := redisv9.NewClient(&redisv9.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return &ThreadCache{client: client, ttl: ttl}
}

func (c *ThreadCache) GetThreads(ctx context.Context, userEmail string) ([]types.ThreadSummary, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userEmail)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get threads failed: %w", err)
	}

	var threads []types.ThreadSummary
	if err := json.Unmarshal([]byte(raw), &threads); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached threads failed: %w", err)
	}
	return threads, true, nil
}

func (c *ThreadCache) SetThreads(ctx context.Context, userEmail string, threads []types.ThreadSummary) error {
	payload, err := json.Marshal(threads)
	if err != nil {
		return fmt.Errorf("marshal thread cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(userEmail), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set threads failed: %w", err)
	}
	return nil
}

func (c *ThreadCache) Invalidate(ctx context.Context, userEmail string) error {
	if err := c.client.Del(ctx, c.key(userEmail)).Err(); err != nil {
		return fmt.Errorf("redis delete threads failed: %w", err)
	}
	return nil
}

func (c *ThreadCache) key(userEmail string) string {
	return fmt.Sprintf("threads:%s:%s", threadsKeyVersion, userEmail)
}
