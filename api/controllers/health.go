package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/aarav-aiphi/Backend/api/responses"
	"github.com/aarav-aiphi/Backend/pkg/config"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

// Pinger is any dependency that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Aiazent-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency; nil entries are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Aiazent-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		failed := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed[name] = err.Error()
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"dependency": name, "error": err.Error()}), "health.ready.failed")
				}
			}
		}
		if len(failed) > 0 {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
