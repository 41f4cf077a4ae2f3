package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/balcaohq/balcao-backend/api/responses"
	"github.com/balcaohq/balcao-backend/pkg/config"
	"github.com/balcaohq/balcao-backend/pkg/logger"
)

const envHeader = "X-Balcao-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP pinger, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		var depErr error
		for name, p := range map[string]pinger{"database": dbP, "redis": redisP} {
			status, err := checkDependency(ctx, p)
			checks[name] = status
			if err != nil {
				depErr = multierr.Append(depErr, fmt.Errorf("%s: %w", name, err))
			}
		}

		if depErr != nil {
			if logg != nil {
				logg.Error(ctx, "readiness check failed", depErr)
			}
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"checks": checks,
			})
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}

func checkDependency(ctx context.Context, p pinger) (string, error) {
	if p == nil {
		return "skipped", nil
	}
	if err := p.Ping(ctx); err != nil {
		return err.Error(), err
	}
	return "ok", nil
}
