package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const callbackKeyPrefix = "payment:callback:"

// CallbackDeduper marks payment notifications as seen with SETNX so a replayed
// delivery is acknowledged without touching the account store.
type CallbackDeduper struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewCallbackDeduper(client redis.UniversalClient, ttl time.Duration) *CallbackDeduper {
	return &CallbackDeduper{client: client, ttl: ttl}
}

func (d *CallbackDeduper) FirstDelivery(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, callbackKeyPrefix+key, time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("callback dedupe: %w", err)
	}
	return ok, nil
}

func (d *CallbackDeduper) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, callbackKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("callback dedupe release: %w", err)
	}
	return nil
}
