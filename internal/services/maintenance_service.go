package services

import (
	"context"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/maintenance"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/metrics"
)

// MaintenanceService implements maintenance.Service
type MaintenanceService struct {
	accounts account.Repository
	logger   *logger.Logger
	now      func() time.Time
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(accounts account.Repository, log *logger.Logger) *MaintenanceService {
	return &MaintenanceService{
		accounts: accounts,
		logger:   log,
		now:      time.Now,
	}
}

// MonthlyReset zeroes posts_used on every subscribed account
func (s *MaintenanceService) MonthlyReset(ctx context.Context) (*maintenance.Result, error) {
	ranAt := s.now().UTC()
	n, err := s.accounts.ResetUsageForSubscribers(ctx)
	return s.finish(maintenance.JobMonthlyReset, ranAt, n, err)
}

// ExpireTrials locks free accounts whose trial has ended and whose usage
// is over the free limit. Accounts within the limit stay unlocked.
func (s *MaintenanceService) ExpireTrials(ctx context.Context) (*maintenance.Result, error) {
	ranAt := s.now().UTC()
	n, err := s.accounts.LockExpiredTrials(ctx, ranAt, account.FreeLimit)
	return s.finish(maintenance.JobTrialExpiry, ranAt, n, err)
}

func (s *MaintenanceService) finish(job string, ranAt time.Time, affected int64, err error) (*maintenance.Result, error) {
	metrics.RecordMaintenanceRun(job, affected, err)
	if err != nil {
		s.logger.WithError(err).With("job", job).Error("Maintenance job failed")
		return nil, err
	}
	s.logger.WithFields(map[string]interface{}{
		"job":      job,
		"affected": affected,
	}).Info("Maintenance job completed")
	return &maintenance.Result{Job: job, Affected: affected, RanAt: ranAt}, nil
}

var _ maintenance.Service = (*MaintenanceService)(nil)
