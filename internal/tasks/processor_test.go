package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SulTenZ/Food-Recipe-App/internal/service"
)

type stubReconciler struct {
	calls     int
	olderThan time.Duration
	limit     int
	err       error
}

func (s *stubReconciler) Reconcile(_ context.Context, olderThan time.Duration, limit int) (service.ReconcileReport, error) {
	s.calls++
	s.olderThan = olderThan
	s.limit = limit
	return service.ReconcileReport{Checked: 2, Resolved: 1}, s.err
}

func TestProcessorReconcile(t *testing.T) {
	stub := &stubReconciler{}
	p := NewProcessor(stub, 15*time.Minute, 50, zerolog.Nop())

	err := p.Handle(context.Background(), redis.XMessage{ID: "1-0", Values: Payload{Type: TypeReconcile}.Values()})
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 15*time.Minute, stub.olderThan)
	assert.Equal(t, 50, stub.limit)
}

func TestProcessorOverrideAndErrors(t *testing.T) {
	stub := &stubReconciler{}
	p := NewProcessor(stub, 15*time.Minute, 50, zerolog.Nop())
	ctx := context.Background()

	values := Payload{Type: TypeReconcile, OlderThan: time.Minute}.Values()
	require.NoError(t, p.Handle(ctx, redis.XMessage{ID: "1-0", Values: values}))
	assert.Equal(t, time.Minute, stub.olderThan)

	require.Error(t, p.Handle(ctx, redis.XMessage{ID: "2-0", Values: map[string]any{"type": TypeReconcile, "olderThan": "soon"}}))

	stub.err = errors.New("db down")
	require.Error(t, p.Handle(ctx, redis.XMessage{ID: "3-0", Values: values}))

	before := stub.calls
	require.NoError(t, p.Handle(ctx, redis.XMessage{ID: "4-0", Values: map[string]any{"type": "thumbnail"}}))
	assert.Equal(t, before, stub.calls)
}
