// Package tasks decodes worker stream entries and runs them.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SulTenZ/Food-Recipe-App/internal/service"
)

const TypeReconcile = "reconcile"

// Payload is a task as carried in a stream entry's fields.
type Payload struct {
	Type string
	// OlderThan overrides the processor's age threshold when set.
	OlderThan time.Duration
}

func (p Payload) Values() map[string]any {
	values := map[string]any{"type": p.Type}
	if p.OlderThan > 0 {
		values["olderThan"] = p.OlderThan.String()
	}
	return values
}

func decodePayload(values map[string]any) (Payload, error) {
	var p Payload
	p.Type, _ = values["type"].(string)
	if raw, ok := values["olderThan"].(string); ok && raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Payload{}, fmt.Errorf("olderThan: %w", err)
		}
		p.OlderThan = d
	}
	return p, nil
}

type Reconciler interface {
	Reconcile(ctx context.Context, olderThan time.Duration, limit int) (service.ReconcileReport, error)
}

type Processor struct {
	reconciler Reconciler
	olderThan  time.Duration
	batch      int
	logger     zerolog.Logger
}

func NewProcessor(reconciler Reconciler, olderThan time.Duration, batch int, logger zerolog.Logger) *Processor {
	return &Processor{
		reconciler: reconciler,
		olderThan:  olderThan,
		batch:      batch,
		logger:     logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	payload, err := decodePayload(msg.Values)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case TypeReconcile:
		return p.reconcile(ctx, payload)
	default:
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) reconcile(ctx context.Context, payload Payload) error {
	olderThan := p.olderThan
	if payload.OlderThan > 0 {
		olderThan = payload.OlderThan
	}

	report, err := p.reconciler.Reconcile(ctx, olderThan, p.batch)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	p.logger.Info().
		Int("checked", report.Checked).
		Int("resolved", report.Resolved).
		Int("upgraded", report.Upgraded).
		Int("failed", report.Failed).
		Msg("payment reconcile finished")
	return nil
}
