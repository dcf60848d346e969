package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/social"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
)

// ProviderChecker verifies the posting provider accepts our credentials
type ProviderChecker interface {
	GetUsageStats(ctx context.Context) (*social.UsageStats, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db       *sql.DB
	provider ProviderChecker
	logger   *logger.Logger
}

// NewHealthHandler creates a new health handler. provider may be nil.
func NewHealthHandler(db *sql.DB, provider ProviderChecker, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:       db,
		provider: provider,
		logger:   log,
	}
}

// Healthz handles liveness probe
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /healthz [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readyz handles readiness probe
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Description Reports "degraded" when the posting provider rejects the configured key
// @Failure 503 {object} utils.ErrorResponse "Database unreachable"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteError(w, errors.ServiceUnavailable("Database connection failed"))
		return
	}

	resp := map[string]string{
		"status":   "ready",
		"database": "connected",
	}

	// A rejected provider key degrades posting but not billing or history
	if h.provider != nil {
		if _, err := h.provider.GetUsageStats(ctx); err != nil {
			h.logger.WithError(err).Warn("Posting provider check failed")
			resp["status"] = "degraded"
			resp["provider"] = "unavailable"
		} else {
			resp["provider"] = "connected"
		}
	}

	utils.WriteSuccess(w, http.StatusOK, resp)
}
