package services

import (
	"context"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/social"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
)

const overviewWindow = 30 * 24 * time.Hour

// AnalyticsService implements social.AnalyticsService
type AnalyticsService struct {
	accounts account.Repository
	provider social.Provider
	logger   *logger.Logger
	now      func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(accounts account.Repository, provider social.Provider, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		accounts: accounts,
		provider: provider,
		logger:   log,
		now:      time.Now,
	}
}

func (s *AnalyticsService) entitled(ctx context.Context, accountID int64) (*account.Account, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.Addons.Has(account.AddonAnalytics) {
		return nil, errors.Forbidden("Analytics Pro add-on required").WithDetails(map[string]interface{}{
			"reason": "addon",
			"addon":  string(account.AddonAnalytics),
		})
	}
	return acct, nil
}

// Get returns provider analytics rows matching q
func (s *AnalyticsService) Get(ctx context.Context, accountID int64, q social.AnalyticsQuery) ([]social.AnalyticsEntry, error) {
	acct, err := s.entitled(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.HasProfile() {
		return nil, errors.PreconditionFailed("No posting profile found")
	}
	if q.Start != nil && q.End != nil && q.End.Before(*q.Start) {
		return nil, errors.BadRequest("end date must not be before start date")
	}

	entries, err := s.provider.GetAnalytics(ctx, *acct.ExternalProfileID, q)
	if err != nil {
		return nil, upstreamError("getAnalytics", err)
	}
	if entries == nil {
		entries = []social.AnalyticsEntry{}
	}
	return entries, nil
}

// GetOverview aggregates the last 30 days
func (s *AnalyticsService) GetOverview(ctx context.Context, accountID int64) (*social.Overview, error) {
	acct, err := s.entitled(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.HasProfile() {
		return &social.Overview{ByPlatform: []social.AnalyticsEntry{}}, nil
	}

	end := s.now().UTC()
	start := end.Add(-overviewWindow)
	entries, err := s.provider.GetAnalytics(ctx, *acct.ExternalProfileID, social.AnalyticsQuery{Start: &start, End: &end})
	if err != nil {
		return nil, upstreamError("getAnalytics", err)
	}

	overview := &social.Overview{
		TotalPosts: int64(len(entries)),
		ByPlatform: entries,
		Period:     &social.Period{Start: start, End: end},
	}
	if overview.ByPlatform == nil {
		overview.ByPlatform = []social.AnalyticsEntry{}
	}
	for _, e := range entries {
		overview.TotalEngagement += e.Metrics.Engagement
		overview.TotalReach += e.Metrics.Impressions
	}
	return overview, nil
}

var _ social.AnalyticsService = (*AnalyticsService)(nil)
