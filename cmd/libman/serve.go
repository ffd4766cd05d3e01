package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"libman/internal/auth"
	"libman/internal/cache"
	"libman/internal/config"
	"libman/internal/httpapi"
	"libman/internal/log"
	"libman/internal/repository"
	"libman/internal/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the overdue scan schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log.Init(cfg.LogLevel, cfg.LogJSON)
	logger := log.GetLogger(ctx)

	db, err := repository.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	if err := repository.Migrate(db); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, catalog cache disabled")
			redisClient = nil
		}
	}
	bookCache := cache.NewBookCache(redisClient, cfg.CacheTTL)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := service.NewAuthService(db, tokens)
	catalogSvc := service.NewCatalogService(db, bookCache)
	borrowSvc := service.NewBorrowService(db)

	scanner := service.NewOverdueScanner(db)
	schedule := cron.New()
	if _, err := schedule.AddFunc(cfg.OverdueSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := scanner.Scan(jobCtx); err != nil {
			log.GetLogger(jobCtx).WithError(err).Error("overdue scan failed")
		}
	}); err != nil {
		return err
	}
	schedule.Start()
	defer schedule.Stop()

	server := httpapi.NewServer(authSvc, catalogSvc, borrowSvc, tokens)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	logger.WithField("addr", cfg.HTTPAddr).Info("server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
