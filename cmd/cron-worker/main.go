package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/cron"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/orders"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/config"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/instance"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/metrics"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/migrate"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	boot := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		boot.Warn(context.Background(), ".env file not found, relying on environment")
	}
	cfg, err := config.Load()
	if err != nil {
		boot.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
		"interval":    cfg.Cron.Interval.String(),
	})

	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped", err)
		stop()
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shut down")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	ordersSvc, err := orders.NewFromConfig(cfg, dbClient, logg, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("orders service: %w", err)
	}

	sweep, err := cron.NewPendingSweepJob(cron.PendingSweepJobParams{Logger: logg, Sweeper: ordersSvc})
	if err != nil {
		return err
	}
	prune, err := cron.NewOutboxPrune(cron.OutboxPrune{
		Logger:         logg,
		Outbox:         outbox.NewRepository(dbClient.DB()),
		KeepDays:       cfg.Cron.OutboxRetentionDays,
		GiveUpAttempts: cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		return err
	}
	lease, err := cron.NewLease(redisClient, cron.LeaseName, cfg.Cron.LockTTL)
	if err != nil {
		return err
	}

	svc, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Jobs:     []cron.Job{sweep, prune},
		Lock:     lease,
		Metrics:  metrics.NewCronMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}
	logg.Info(ctx, "cron worker started")
	return svc.Run(ctx)
}
