package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyClient caches the unfiltered event listing. The cache is strictly
// optional: a nil *ValkeyClient is tolerated everywhere and means no caching.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	TTL      time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.TTL == 0 {
		cfg.TTL = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{client: rdb, ttl: cfg.TTL}, nil
}

func eventsListKey(page, pageSize int) string {
	return fmt.Sprintf("events:list:%d:%d", page, pageSize)
}

// GetEventsListRaw returns the cached listing page as raw JSON, avoiding an
// unmarshal/marshal round trip on the hot path.
func (v *ValkeyClient) GetEventsListRaw(ctx context.Context, page, pageSize int) ([]byte, error) {
	raw, err := v.client.Get(ctx, eventsListKey(page, pageSize)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("events list not in cache")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return raw, nil
}

// SetEventsList stores a listing page. Failures are swallowed; the cache is
// never allowed to fail a read path.
func (v *ValkeyClient) SetEventsList(ctx context.Context, page, pageSize int, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	v.client.Set(ctx, eventsListKey(page, pageSize), payload, v.ttl)
}

// InvalidateEventsList drops all cached listing pages after a mutation.
func (v *ValkeyClient) InvalidateEventsList(ctx context.Context) {
	iter := v.client.Scan(ctx, 0, "events:list:*", 0).Iterator()
	for iter.Next(ctx) {
		v.client.Del(ctx, iter.Val())
	}
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
