package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/cache"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/config"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/database"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/handlers"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/jobs"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/log"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/seed"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/server"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/service"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/storage"
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

	if err := database.Migrate(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	seeder := seed.NewSeeder(
		repository.NewUserRepository(dbPool),
		repository.NewCategoryRepository(dbPool),
		repository.NewImageRepository(dbPool),
		cfg,
		logger,
	)
	if err := seeder.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("seeding failed")
	}

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, objectStore, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.EditRequestMaxAge > 0 {
		editRequests := service.NewEditRequestService(
			repository.NewEditRequestRepository(dbPool),
			repository.NewAnnotationRepository(dbPool),
			repository.NewImageRepository(dbPool),
			repository.NewUserRepository(dbPool),
			logger,
		)
		scheduler = jobs.NewScheduler(editRequests, cfg.Jobs.EditRequestMaxAge, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error().Err(err).Msg("scheduler start failed")
		}
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
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
