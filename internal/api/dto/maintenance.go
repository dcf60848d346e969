package dto

import "time"

// MonthlyResetResponse is returned by the monthly reset trigger
type MonthlyResetResponse struct {
	Success      bool      `json:"success"`
	UsersUpdated int64     `json:"usersUpdated"`
	Timestamp    time.Time `json:"timestamp"`
}

// TrialExpiryResponse is returned by the trial expiry trigger
type TrialExpiryResponse struct {
	Success        bool      `json:"success"`
	AccountsLocked int64     `json:"accountsLocked"`
	Timestamp      time.Time `json:"timestamp"`
}

// CronErrorResponse is returned when a maintenance job fails
type CronErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
