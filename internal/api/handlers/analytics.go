package handlers

import (
	"net/http"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/social"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
)

// AnalyticsHandler serves engagement analytics to add-on holders
type AnalyticsHandler struct {
	analytics social.AnalyticsService
	logger    *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics social.AnalyticsService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    log,
	}
}

// Get returns per-platform analytics rows
// @Summary Analytics
// @Tags Analytics
// @Produce json
// @Param platform query string false "Platform filter"
// @Param start query string false "RFC3339 start"
// @Param end query string false "RFC3339 end"
// @Success 200 {array} social.AnalyticsEntry
// @Failure 403 {object} utils.ErrorResponse "Analytics add-on required"
// @Failure 412 {object} utils.ErrorResponse "No posting profile"
// @Security BearerAuth
// @Router /analytics [get]
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	start, err := parseTimeQuery(q.Get("start"))
	if err != nil {
		utils.WriteError(w, errors.BadRequest("start must be an RFC3339 timestamp"))
		return
	}
	end, err := parseTimeQuery(q.Get("end"))
	if err != nil {
		utils.WriteError(w, errors.BadRequest("end must be an RFC3339 timestamp"))
		return
	}

	entries, err := h.analytics.Get(r.Context(), accountID, social.AnalyticsQuery{
		Platform: q.Get("platform"),
		Start:    start,
		End:      end,
	})
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}
	if entries == nil {
		entries = []social.AnalyticsEntry{}
	}

	utils.WriteSuccess(w, http.StatusOK, entries)
}

// Overview returns 30-day totals
// @Summary Analytics overview
// @Tags Analytics
// @Produce json
// @Success 200 {object} social.Overview
// @Failure 403 {object} utils.ErrorResponse "Analytics add-on required"
// @Security BearerAuth
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	overview, err := h.analytics.GetOverview(r.Context(), accountID)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, overview)
}

func parseTimeQuery(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
