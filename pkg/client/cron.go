package client

import (
	"context"
	"fmt"
)

// CronService triggers maintenance jobs with the shared cron secret
type CronService struct {
	client *Client
}

func (s *CronService) secret() (string, error) {
	if s.client.cronSecret == "" {
		return "", fmt.Errorf("cron secret is not configured")
	}
	return s.client.cronSecret, nil
}

// MonthlyReset zeroes posts_used for every subscribed account
func (s *CronService) MonthlyReset(ctx context.Context) (*MonthlyResetResult, error) {
	secret, err := s.secret()
	if err != nil {
		return nil, err
	}
	var res MonthlyResetResult
	if err := s.client.doRaw(ctx, "GET", "/api/cron/monthly-reset", secret, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TrialExpiry locks expired trial accounts over the free allowance
func (s *CronService) TrialExpiry(ctx context.Context) (*TrialExpiryResult, error) {
	secret, err := s.secret()
	if err != nil {
		return nil, err
	}
	var res TrialExpiryResult
	if err := s.client.doRaw(ctx, "GET", "/api/cron/trial-expiry", secret, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Jobs lists in-process schedules
func (s *CronService) Jobs(ctx context.Context) ([]ScheduledJob, error) {
	secret, err := s.secret()
	if err != nil {
		return nil, err
	}
	var env struct {
		Data []ScheduledJob `json:"data"`
	}
	if err := s.client.doRaw(ctx, "GET", "/api/cron/jobs", secret, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}
