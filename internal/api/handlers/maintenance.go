package handlers

import (
	"net/http"

	"github.com/pulsesocial/pulse/internal/api/dto"
	"github.com/pulsesocial/pulse/internal/domain/maintenance"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
	"github.com/pulsesocial/pulse/internal/services"
)

// JobLister reports the in-process schedule
type JobLister interface {
	Jobs() []services.ScheduledJob
}

// MaintenanceHandler exposes the periodic jobs to an external scheduler.
// Routes are guarded by the shared cron secret.
type MaintenanceHandler struct {
	service   maintenance.Service
	scheduler JobLister
	logger    *logger.Logger
}

// NewMaintenanceHandler creates a new maintenance handler. scheduler may
// be nil when the in-process scheduler is disabled.
func NewMaintenanceHandler(service maintenance.Service, scheduler JobLister, log *logger.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		service:   service,
		scheduler: scheduler,
		logger:    log,
	}
}

// MonthlyReset zeroes usage for subscribed accounts
// @Summary Monthly usage reset
// @Tags Maintenance
// @Produce json
// @Success 200 {object} dto.MonthlyResetResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} dto.CronErrorResponse
// @Security CronSecret
// @Router /cron/monthly-reset [get]
func (h *MaintenanceHandler) MonthlyReset(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.MonthlyReset(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.MonthlyResetResponse{
		Success:      true,
		UsersUpdated: res.Affected,
		Timestamp:    res.RanAt,
	})
}

// TrialExpiry locks free accounts whose trial ended over the free limit
// @Summary Trial expiry sweep
// @Tags Maintenance
// @Produce json
// @Success 200 {object} dto.TrialExpiryResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} dto.CronErrorResponse
// @Security CronSecret
// @Router /cron/trial-expiry [get]
func (h *MaintenanceHandler) TrialExpiry(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ExpireTrials(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.TrialExpiryResponse{
		Success:        true,
		AccountsLocked: res.Affected,
		Timestamp:      res.RanAt,
	})
}

// Jobs lists the in-process schedule
// @Summary Scheduled jobs
// @Tags Maintenance
// @Produce json
// @Success 200 {array} services.ScheduledJob
// @Security CronSecret
// @Router /cron/jobs [get]
func (h *MaintenanceHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	jobs := []services.ScheduledJob{}
	if h.scheduler != nil {
		jobs = h.scheduler.Jobs()
	}
	utils.WriteSuccess(w, http.StatusOK, jobs)
}

func (h *MaintenanceHandler) fail(w http.ResponseWriter, err error) {
	utils.WriteJSON(w, http.StatusInternalServerError, dto.CronErrorResponse{
		Error:   "Internal server error",
		Message: err.Error(),
	})
}
