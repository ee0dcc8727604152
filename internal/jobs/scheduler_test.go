package jobs

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SulTenZ/Food-Recipe-App/internal/tasks"
)

func TestEnqueueReconcile(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewScheduler(client, "payment:reconcile", "0 */5 * * * *", zerolog.Nop())
	s.enqueueReconcile()

	msgs, err := client.XRange(context.Background(), "payment:reconcile", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, tasks.TypeReconcile, msgs[0].Values["type"])
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewScheduler(client, "payment:reconcile", "not a cron line", zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestSchedulerWithoutQueueIsNoop(t *testing.T) {
	s := NewScheduler(nil, "payment:reconcile", "0 */5 * * * *", zerolog.Nop())
	require.NoError(t, s.Start())
	require.NoError(t, s.Enqueue(context.Background(), tasks.Payload{Type: tasks.TypeReconcile}))
}
