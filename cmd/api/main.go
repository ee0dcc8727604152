package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SulTenZ/Food-Recipe-App/internal/cache"
	"github.com/SulTenZ/Food-Recipe-App/internal/config"
	"github.com/SulTenZ/Food-Recipe-App/internal/database"
	"github.com/SulTenZ/Food-Recipe-App/internal/handlers"
	"github.com/SulTenZ/Food-Recipe-App/internal/jobs"
	"github.com/SulTenZ/Food-Recipe-App/internal/log"
	"github.com/SulTenZ/Food-Recipe-App/internal/mail"
	"github.com/SulTenZ/Food-Recipe-App/internal/payment"
	"github.com/SulTenZ/Food-Recipe-App/internal/repository"
	"github.com/SulTenZ/Food-Recipe-App/internal/security"
	"github.com/SulTenZ/Food-Recipe-App/internal/server"
	"github.com/SulTenZ/Food-Recipe-App/internal/service"
	"github.com/SulTenZ/Food-Recipe-App/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, dbPool); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	checks := map[string]handlers.Pinger{
		"database": dbPool,
		"cache": handlers.PingFunc(func(ctx context.Context) error {
			return cache.Ping(ctx, redisClient)
		}),
	}

	var photos service.PhotoStore
	if cfg.Storage.Endpoint != "" {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		photos = objectStore
		checks["storage"] = objectStore
	} else {
		logger.Warn().Msg("object storage not configured, recipe photos disabled")
	}

	accounts := repository.NewAccountRepository(dbPool)
	recipes := repository.NewRecipeRepository(dbPool)

	mailer := mail.NewSMTPMailer(cfg.Mail, logger)
	gateway := payment.NewMidtransClient(cfg.Payment)
	signer := security.NewTokenSigner(cfg.Security.JWTSecret, cfg.Security.JWTTTL)

	sessions := service.NewSessionManager(accounts, signer, cfg.Security.MaxSessions, logger)
	accountService := service.NewAccountService(
		accounts,
		security.NewHasher(security.DefaultParams),
		service.NewOTPIssuer(mailer, cfg.OTP),
		service.NewLoginGuard(cfg.Security.MaxLoginAttempts, cfg.Security.BanDuration),
		sessions,
		logger,
	)
	premiumService := service.NewPremiumService(
		accounts,
		gateway,
		cache.NewCallbackDeduper(redisClient, cfg.Security.CallbackDedupeTTL),
		cfg.Payment.PremiumPrice,
		logger,
	)
	recipeService := service.NewRecipeService(recipes, photos, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Services{
		Accounts: accountService,
		Sessions: sessions,
		Premium:  premiumService,
		Recipes:  recipeService,
	}, checks)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(redisClient, cfg.Queue.Stream, cfg.Payment.ReconcileSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
