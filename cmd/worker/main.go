package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aarav-aiphi/Backend/internal/notifications"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/idempotency"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/mail"
	"github.com/aarav-aiphi/Backend/pkg/pubsub"
	"github.com/aarav-aiphi/Backend/pkg/redis"
)

// claimTTL bounds how long a delivered message id is remembered.
const claimTTL = 7 * 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
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

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, pubsub.RoleSubscriber, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	sender, err := mail.NewSMTPSender(cfg.SMTP, cfg.Mail)
	if err != nil {
		logg.Error(ctx, "failed to create smtp sender", err)
		os.Exit(1)
	}

	guard, err := idempotency.NewGuard(redisClient, claimTTL)
	if err != nil {
		logg.Error(ctx, "failed to create idempotency guard", err)
		os.Exit(1)
	}

	consumer, err := notifications.NewConsumer(sender, pubsubClient.MailSubscription(), guard, logg)
	if err != nil {
		logg.Error(ctx, "failed to create mail consumer", err)
		os.Exit(1)
	}

	service, err := NewService(logg, consumer,
		Dependency{Name: "redis", Conn: redisClient},
		Dependency{Name: "pubsub", Conn: pubsubClient},
	)
	if err != nil {
		logg.Error(ctx, "failed to create worker service", err)
		os.Exit(1)
	}

	logg.Info(ctx, "starting worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}
