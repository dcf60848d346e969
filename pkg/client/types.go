package client

import (
	"encoding/json"
	"time"
)

// Account is the signed-in account
type Account struct {
	ID                int64      `json:"id"`
	Name              *string    `json:"name,omitempty"`
	Email             string     `json:"email"`
	Plan              string     `json:"plan"`
	Addons            []string   `json:"addons"`
	PostsUsed         int        `json:"posts_used"`
	PostsLimit        int        `json:"posts_limit"`
	IsLocked          bool       `json:"is_locked"`
	TrialEndsAt       *time.Time `json:"trial_ends_at,omitempty"`
	ExternalProfileID *string    `json:"external_profile_id,omitempty"`
}

// Usage reports the current period's post allowance
type Usage struct {
	PostsUsed       int        `json:"posts_used"`
	PostsLimit      int        `json:"posts_limit"`
	PercentageUsed  int        `json:"percentage_used"`
	PostsLast30Days int64      `json:"posts_last_30_days"`
	IsLocked        bool       `json:"is_locked"`
	TrialEndsAt     *time.Time `json:"trial_ends_at,omitempty"`
}

// PostLog is a recorded post submission
type PostLog struct {
	ID             int64      `json:"id"`
	AccountID      int64      `json:"account_id"`
	Content        string     `json:"content"`
	Platforms      []string   `json:"platforms"`
	ExternalPostID string     `json:"external_post_id"`
	Status         string     `json:"status"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	MediaURLs      []string   `json:"media_urls"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ProviderPost is the post as the publishing provider accepted it
type ProviderPost struct {
	ID          string     `json:"id"`
	ProfileID   string     `json:"profile_id"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Platforms   []string   `json:"platforms"`
}

// PostResult is returned after a successful submission
type PostResult struct {
	Log      *PostLog      `json:"log"`
	Provider *ProviderPost `json:"provider"`
}

// PostHistory is one page of post logs, newest first
type PostHistory struct {
	Posts  []PostLog `json:"posts"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// CreatePostRequest is a post submission
type CreatePostRequest struct {
	Content              string          `json:"content"`
	Platforms            []string        `json:"platforms"`
	ScheduledAt          *time.Time      `json:"scheduled_at,omitempty"`
	UseQueue             bool            `json:"use_queue,omitempty"`
	MediaURLs            []string        `json:"media_urls,omitempty"`
	PlatformSpecificData json.RawMessage `json:"platform_specific_data,omitempty"`
}

// Plan is a purchasable subscription tier
type Plan struct {
	Plan       string `json:"plan"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	PostsLimit int    `json:"posts_limit"`
}

// Addon is a purchasable entitlement
type Addon struct {
	Addon       string `json:"addon"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
}

// Catalogue lists every plan and add-on
type Catalogue struct {
	Plans  []Plan  `json:"plans"`
	Addons []Addon `json:"addons"`
}

// Subscription is the account's billing state
type Subscription struct {
	Plan           string     `json:"plan"`
	Addons         []string   `json:"addons"`
	SubscriptionID *string    `json:"subscription_id,omitempty"`
	PriceID        *string    `json:"price_id,omitempty"`
	PeriodEnd      *time.Time `json:"period_end,omitempty"`
	TrialEndsAt    *time.Time `json:"trial_ends_at,omitempty"`
	HasCustomer    bool       `json:"has_customer"`
}

// Session is a hosted billing page
type Session struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

// Profile is the provider-side grouping of connected social accounts
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ConnectedAccount is a social account linked to the profile
type ConnectedAccount struct {
	ID        string `json:"id"`
	Platform  string `json:"platform"`
	Username  string `json:"username"`
	Connected bool   `json:"connected"`
}

// Invite is a link the user follows to connect a platform
type Invite struct {
	Platform  string     `json:"platform"`
	InviteURL string     `json:"invite_url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ConnectionStatus reports whether a platform is connected
type ConnectionStatus struct {
	Platform  string `json:"platform"`
	Connected bool   `json:"connected"`
}

// JobResult is the outcome of a maintenance run
type JobResult struct {
	Job      string    `json:"job"`
	Affected int64     `json:"affected"`
	RanAt    time.Time `json:"ran_at"`
}

// ScheduledJob describes an in-process maintenance schedule
type ScheduledJob struct {
	Name       string     `json:"name"`
	Schedule   string     `json:"schedule"`
	NextRun    *time.Time `json:"next_run,omitempty"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	LastResult *JobResult `json:"last_result,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

// MonthlyResetResult is returned by the monthly reset trigger
type MonthlyResetResult struct {
	Success      bool      `json:"success"`
	UsersUpdated int64     `json:"usersUpdated"`
	Timestamp    time.Time `json:"timestamp"`
}

// TrialExpiryResult is returned by the trial expiry trigger
type TrialExpiryResult struct {
	Success        bool      `json:"success"`
	AccountsLocked int64     `json:"accountsLocked"`
	Timestamp      time.Time `json:"timestamp"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// ListOptions contains common pagination options
type ListOptions struct {
	Limit  int
	Offset int
}
