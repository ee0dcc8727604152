package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCallbackDeduper(t *testing.T) {
	mr, client := newTestClient(t)
	d := NewCallbackDeduper(client, time.Minute)
	ctx := context.Background()

	first, err := d.FirstDelivery(ctx, "order-1:settlement")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.FirstDelivery(ctx, "order-1:settlement")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := d.FirstDelivery(ctx, "order-1:deny")
	require.NoError(t, err)
	assert.True(t, other)

	mr.FastForward(time.Minute + time.Second)
	expired, err := d.FirstDelivery(ctx, "order-1:settlement")
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestCallbackDeduperRelease(t *testing.T) {
	mr, client := newTestClient(t)
	d := NewCallbackDeduper(client, time.Minute)
	ctx := context.Background()

	first, err := d.FirstDelivery(ctx, "order-3:capture")
	require.NoError(t, err)
	require.True(t, first)
	assert.True(t, mr.Exists(callbackKeyPrefix+"order-3:capture"))

	require.NoError(t, d.Release(ctx, "order-3:capture"))
	assert.False(t, mr.Exists(callbackKeyPrefix+"order-3:capture"))

	again, err := d.FirstDelivery(ctx, "order-3:capture")
	require.NoError(t, err)
	assert.True(t, again)

	require.NoError(t, d.Release(ctx, "never-set"))
}

func TestCallbackDeduperUnavailable(t *testing.T) {
	mr, client := newTestClient(t)
	d := NewCallbackDeduper(client, time.Minute)
	mr.Close()

	_, err := d.FirstDelivery(context.Background(), "order-2:settlement")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	mr, client := newTestClient(t)
	require.NoError(t, Ping(context.Background(), client))

	mr.Close()
	assert.Error(t, Ping(context.Background(), client))
}
