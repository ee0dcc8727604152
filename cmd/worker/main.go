package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/SulTenZ/Food-Recipe-App/internal/cache"
	"github.com/SulTenZ/Food-Recipe-App/internal/config"
	"github.com/SulTenZ/Food-Recipe-App/internal/database"
	"github.com/SulTenZ/Food-Recipe-App/internal/log"
	"github.com/SulTenZ/Food-Recipe-App/internal/payment"
	"github.com/SulTenZ/Food-Recipe-App/internal/queue"
	"github.com/SulTenZ/Food-Recipe-App/internal/repository"
	"github.com/SulTenZ/Food-Recipe-App/internal/service"
	"github.com/SulTenZ/Food-Recipe-App/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	premium := service.NewPremiumService(
		repository.NewAccountRepository(dbPool),
		payment.NewMidtransClient(cfg.Payment),
		nil,
		cfg.Payment.PremiumPrice,
		logger,
	)

	processor := tasks.NewProcessor(premium, cfg.Payment.ReconcileAfter, cfg.Payment.ReconcileBatch, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Queue.Stream,
		cfg.Queue.Group,
		cfg.Queue.Consumer,
		cfg.Queue.ClaimInterval,
		logger,
		processor,
	)

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
