package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/SulTenZ/Food-Recipe-App/internal/tasks"
)

// Scheduler enqueues periodic reconcile tasks onto the worker stream. The
// worker does the gateway calls; the API process only publishes.
type Scheduler struct {
	cron     *cron.Cron
	queue    redis.UniversalClient
	stream   string
	schedule string
	log      zerolog.Logger
}

func NewScheduler(queue redis.UniversalClient, stream, schedule string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		queue:    queue,
		stream:   stream,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil || s.schedule == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueReconcile); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("payment reconcile scheduled")
	return nil
}

// Stop halts the cron loop and waits briefly for a running enqueue.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) enqueueReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Enqueue(ctx, tasks.Payload{Type: tasks.TypeReconcile}); err != nil {
		s.log.Error().Err(err).Msg("enqueue reconcile failed")
	}
}

func (s *Scheduler) Enqueue(ctx context.Context, payload tasks.Payload) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: 10000,
		Approx: true,
		Values: payload.Values(),
	}).Result()
	return err
}
