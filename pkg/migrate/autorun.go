package migrate

import (
	"context"
	"fmt"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/db"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations at startup, but only in dev
// with the auto-migrate flag on.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	m, err := New(sqlDB, EmbeddedFS())
	if err != nil {
		return err
	}
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "source": "embedded"})
	applied, err := m.Up(ctx)
	if err != nil {
		return fmt.Errorf("dev auto-migrate: %w", err)
	}
	logg.Info(logg.WithField(ctx, "applied", len(applied)), "dev auto-migrate completed")
	return nil
}
