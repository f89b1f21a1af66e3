package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/aarav-aiphi/Backend/api/controllers"
	"github.com/aarav-aiphi/Backend/api/routes"
	"github.com/aarav-aiphi/Backend/pkg/auth/session"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/db"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/migrate"
	"github.com/aarav-aiphi/Backend/pkg/redis"
	"github.com/aarav-aiphi/Backend/pkg/storage"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	svc, err := buildServices(ctx, cfg, logg, dbClient, redisClient, sessionManager, assetStore, prometheus.DefaultRegisterer)
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		os.Exit(1)
	}
	defer svc.close()

	health := map[string]controllers.Pinger{
		"db":     dbClient,
		"redis":  redisClient,
		"assets": assetStore,
	}
	if svc.pubsub != nil {
		health["pubsub"] = svc.pubsub
	}

	handler := routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		Health:      health,
		Metrics:     prometheus.DefaultGatherer,
		Sessions:    sessionManager,
		RateLimits:  redisClient,
		Idempotency: redisClient,
		Users:       svc.users,
		Auth:        svc.auth,
		History:     svc.history,
		Collections: svc.collections,
		Listings:    svc.listings,
		Changes:     svc.changes,
		Blogs:       svc.blogs,
		Contacts:    svc.contacts,
		Newsletter:  svc.newsletter,
		UseCases:    svc.useCases,
		News:        svc.news,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if svc.recorder != nil {
		g.Go(func() error {
			svc.recorder.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}
