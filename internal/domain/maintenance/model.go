package maintenance

import (
	"context"
	"time"
)

// Job names
const (
	JobMonthlyReset = "monthly-reset"
	JobTrialExpiry  = "trial-expiry"
)

// Result is the outcome of one sweep.
type Result struct {
	Job      string    `json:"job"`
	Affected int64     `json:"affected"`
	RanAt    time.Time `json:"ran_at"`
}

// Service runs the periodic maintenance sweeps. Both are idempotent.
type Service interface {
	// MonthlyReset zeroes usage for every paying account
	MonthlyReset(ctx context.Context) (*Result, error)

	// ExpireTrials locks free accounts past their trial that are over the
	// free limit
	ExpireTrials(ctx context.Context) (*Result, error)
}
