package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/post"
	"github.com/pulsesocial/pulse/internal/domain/social"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/metrics"
)

const (
	lateProviderName   = "late"
	defaultLateBaseURL = "https://getlate.dev/api/v1"
	maxErrorBody       = 4 << 10
)

// UpstreamError is a non-2xx answer from an external provider.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("status %d - %s", e.StatusCode, e.Body)
}

// LateConfig configures LateClient
type LateConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// LateClient talks to the Late posting API
type LateClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewLateClient creates a Late API client. Every request is bounded by
// cfg.Timeout (default 15s).
func NewLateClient(cfg LateConfig, log *logger.Logger) *LateClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultLateBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &LateClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     log.With("provider", lateProviderName),
	}
}

// doRequest performs one call. op names the call in errors and metrics.
func (c *LateClient) doRequest(ctx context.Context, op, method, path string, body, result interface{}) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstreamCall(lateProviderName, op, err, time.Since(start))
		if err != nil {
			c.logger.WithError(err).With("operation", op).Warn("late api call failed")
			err = errors.Upstream(lateProviderName, op, err)
		}
	}()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the URL only, never the header
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

type lateProfile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateProfile creates a profile
func (c *LateClient) CreateProfile(ctx context.Context, name, description string) (*social.Profile, error) {
	var out lateProfile
	body := lateProfile{Name: name, Description: description}
	if err := c.doRequest(ctx, "createProfile", http.MethodPost, "/profiles", body, &out); err != nil {
		return nil, err
	}
	return &social.Profile{ID: out.ID, Name: out.Name, Description: out.Description}, nil
}

// GetProfile fetches a profile
func (c *LateClient) GetProfile(ctx context.Context, profileID string) (*social.Profile, error) {
	var out lateProfile
	if err := c.doRequest(ctx, "getProfile", http.MethodGet, "/profiles/"+url.PathEscape(profileID), nil, &out); err != nil {
		return nil, err
	}
	return &social.Profile{ID: out.ID, Name: out.Name, Description: out.Description}, nil
}

// CreatePlatformInvite creates a connect link for one platform
func (c *LateClient) CreatePlatformInvite(ctx context.Context, profileID string, platform string) (*social.Invite, error) {
	var out struct {
		Platform  string     `json:"platform"`
		InviteURL string     `json:"inviteUrl"`
		ExpiresAt *time.Time `json:"expiresAt"`
	}
	body := map[string]string{"profileId": profileID, "platform": platform}
	if err := c.doRequest(ctx, "createPlatformInvite", http.MethodPost, "/platform-invites", body, &out); err != nil {
		return nil, err
	}
	if out.Platform == "" {
		out.Platform = platform
	}
	return &social.Invite{
		Platform:  account.Platform(out.Platform),
		InviteURL: out.InviteURL,
		ExpiresAt: out.ExpiresAt,
	}, nil
}

// GetAccounts lists connected accounts of a profile
func (c *LateClient) GetAccounts(ctx context.Context, profileID string) ([]social.ConnectedAccount, error) {
	var out []struct {
		ID          string `json:"id"`
		Platform    string `json:"platform"`
		Username    string `json:"username"`
		IsConnected bool   `json:"isConnected"`
	}
	q := url.Values{"profileId": {profileID}}
	if err := c.doRequest(ctx, "getAccounts", http.MethodGet, "/accounts?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	accounts := make([]social.ConnectedAccount, 0, len(out))
	for _, a := range out {
		accounts = append(accounts, social.ConnectedAccount{
			ID:        a.ID,
			Platform:  account.Platform(a.Platform),
			Username:  a.Username,
			Connected: a.IsConnected,
		})
	}
	return accounts, nil
}

type latePostPayload struct {
	ProfileID            string           `json:"profileId"`
	Content              string           `json:"content"`
	Platforms            []string         `json:"platforms"`
	ScheduledAt          string           `json:"scheduledAt,omitempty"`
	MediaItems           []post.MediaItem `json:"mediaItems,omitempty"`
	PlatformSpecificData json.RawMessage  `json:"platformSpecificData,omitempty"`
	QueuedFromProfile    string           `json:"queuedFromProfile,omitempty"`
}

type latePost struct {
	ID          string     `json:"id"`
	ProfileID   string     `json:"profileId"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	PublishedAt *time.Time `json:"publishedAt"`
	Platforms   []string   `json:"platforms"`
}

// CreatePost submits a post
func (c *LateClient) CreatePost(ctx context.Context, req social.PostRequest) (*post.ProviderPost, error) {
	payload := latePostPayload{
		ProfileID:            req.ProfileID,
		Content:              req.Content,
		Platforms:            make([]string, len(req.Platforms)),
		MediaItems:           req.MediaItems,
		PlatformSpecificData: req.PlatformSpecificData,
		QueuedFromProfile:    req.QueuedFromProfile,
	}
	for i, p := range req.Platforms {
		payload.Platforms[i] = string(p)
	}
	if req.ScheduledAt != nil {
		payload.ScheduledAt = req.ScheduledAt.UTC().Format(time.RFC3339)
	}

	var out latePost
	if err := c.doRequest(ctx, "createPost", http.MethodPost, "/posts", payload, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.Upstream(lateProviderName, "createPost", fmt.Errorf("response carried no post id"))
	}

	platforms := make([]account.Platform, len(out.Platforms))
	for i, p := range out.Platforms {
		platforms[i] = account.Platform(p)
	}
	return &post.ProviderPost{
		ID:          out.ID,
		ProfileID:   out.ProfileID,
		Content:     out.Content,
		Status:      out.Status,
		ScheduledAt: out.ScheduledAt,
		PublishedAt: out.PublishedAt,
		Platforms:   platforms,
	}, nil
}

// GetNextQueueSlot asks for the profile's next free queue slot
func (c *LateClient) GetNextQueueSlot(ctx context.Context, profileID string) (*social.QueueSlot, error) {
	var out struct {
		ProfileID string    `json:"profileId"`
		NextSlot  time.Time `json:"nextSlot"`
		Timezone  string    `json:"timezone"`
	}
	q := url.Values{"profileId": {profileID}}
	if err := c.doRequest(ctx, "getNextQueueSlot", http.MethodGet, "/queue/next-slot?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.NextSlot.IsZero() {
		return nil, errors.Upstream(lateProviderName, "getNextQueueSlot", fmt.Errorf("response carried no slot"))
	}
	return &social.QueueSlot{ProfileID: out.ProfileID, NextSlot: out.NextSlot, Timezone: out.Timezone}, nil
}

// GetAnalytics fetches analytics rows for a profile
func (c *LateClient) GetAnalytics(ctx context.Context, profileID string, query social.AnalyticsQuery) ([]social.AnalyticsEntry, error) {
	q := url.Values{"profileId": {profileID}}
	if query.Platform != "" {
		q.Set("platform", query.Platform)
	}
	if query.Start != nil {
		q.Set("startDate", query.Start.UTC().Format(time.RFC3339))
	}
	if query.End != nil {
		q.Set("endDate", query.End.UTC().Format(time.RFC3339))
	}

	var out []struct {
		ProfileID string         `json:"profileId"`
		Platform  string         `json:"platform"`
		Metrics   social.Metrics `json:"metrics"`
		Period    social.Period  `json:"period"`
	}
	if err := c.doRequest(ctx, "getAnalytics", http.MethodGet, "/analytics?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	entries := make([]social.AnalyticsEntry, 0, len(out))
	for _, e := range out {
		entries = append(entries, social.AnalyticsEntry{
			ProfileID: e.ProfileID,
			Platform:  account.Platform(e.Platform),
			Metrics:   e.Metrics,
			Period:    e.Period,
		})
	}
	return entries, nil
}

// GetUsageStats fetches account-wide usage. It doubles as a credential check.
func (c *LateClient) GetUsageStats(ctx context.Context) (*social.UsageStats, error) {
	var out struct {
		PostsCreated      int `json:"postsCreated"`
		PostsScheduled    int `json:"postsScheduled"`
		PostsPublished    int `json:"postsPublished"`
		AccountsConnected int `json:"accountsConnected"`
		ProfilesActive    int `json:"profilesActive"`
	}
	if err := c.doRequest(ctx, "getUsageStats", http.MethodGet, "/usage-stats", nil, &out); err != nil {
		return nil, err
	}
	return &social.UsageStats{
		PostsCreated:      out.PostsCreated,
		PostsScheduled:    out.PostsScheduled,
		PostsPublished:    out.PostsPublished,
		AccountsConnected: out.AccountsConnected,
		ProfilesActive:    out.ProfilesActive,
	}, nil
}

var _ social.Provider = (*LateClient)(nil)
