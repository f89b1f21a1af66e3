package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aarav-aiphi/Backend/internal/changes"
	"github.com/aarav-aiphi/Backend/internal/cron"
	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/db"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/metrics"
	"github.com/aarav-aiphi/Backend/pkg/migrate"
	"github.com/aarav-aiphi/Backend/pkg/redis"
	"github.com/aarav-aiphi/Backend/pkg/storage"
)

const lockNameFormat = "cron-worker:%s"

func main() {
	once := flag.Bool("once", false, "run one cycle and exit")
	jobs := flag.String("job", "", "comma separated job names to run (implies -once)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    cfg.Service.Instance(),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	assetStore, err := storage.Open(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap asset storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := assetStore.Close(); err != nil {
			logg.Error(context.Background(), "error closing asset storage", err)
		}
	}()

	registry, err := buildRegistry(cfg, logg, dbClient, assetStore)
	if err != nil {
		logg.Error(ctx, "failed to register cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockName(cfg.App.Env), cfg.Service.Instance(), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	if names := splitNames(*jobs); *once || len(names) > 0 {
		logg.Info(ctx, "running cron jobs once")
		if err := service.RunOnce(ctx, names...); err != nil {
			logg.Error(ctx, "cron run failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, assetStore *storage.Backend) (*cron.Registry, error) {
	sweep, err := cron.NewTempAssetSweepJob(cron.TempAssetSweepJobParams{
		Logger:    logg,
		Assets:    assetStore,
		Changes:   changes.NewRepository(dbClient.DB()),
		Retention: cfg.Assets.TempRetention,
	})
	if err != nil {
		return nil, err
	}
	popularity, err := cron.NewPopularityJob(logg, listings.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, err
	}
	return cron.NewRegistry(sweep, popularity)
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockNameFormat, env)
}

func splitNames(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
