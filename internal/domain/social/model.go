package social

import (
	"encoding/json"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/post"
)

// Profile is a posting provider profile grouping connected accounts.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ConnectedAccount is a social network account linked to a profile.
type ConnectedAccount struct {
	ID        string           `json:"id"`
	Platform  account.Platform `json:"platform"`
	Username  string           `json:"username"`
	Connected bool             `json:"connected"`
}

// Invite is a link the user follows to connect a platform account.
type Invite struct {
	Platform  account.Platform `json:"platform"`
	InviteURL string           `json:"invite_url"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

// ConnectionStatus reports whether a platform is connected.
type ConnectionStatus struct {
	Platform  account.Platform `json:"platform"`
	Connected bool             `json:"connected"`
}

// QueueSlot is the provider's next free publishing slot.
type QueueSlot struct {
	ProfileID string    `json:"profile_id"`
	NextSlot  time.Time `json:"next_slot"`
	Timezone  string    `json:"timezone"`
}

// PostRequest is a post as sent to the provider.
type PostRequest struct {
	ProfileID            string
	Content              string
	Platforms            []account.Platform
	ScheduledAt          *time.Time
	MediaItems           []post.MediaItem
	PlatformSpecificData json.RawMessage
	// QueuedFromProfile names the profile whose queue supplied ScheduledAt
	QueuedFromProfile string
}

// Metrics are engagement counters for a period.
type Metrics struct {
	Impressions int64 `json:"impressions"`
	Engagement  int64 `json:"engagement"`
	Clicks      int64 `json:"clicks"`
	Shares      int64 `json:"shares"`
}

// Period is a closed time window.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AnalyticsEntry is one row of provider analytics.
type AnalyticsEntry struct {
	ProfileID string           `json:"profile_id"`
	Platform  account.Platform `json:"platform"`
	Metrics   Metrics          `json:"metrics"`
	Period    Period           `json:"period"`
}

// AnalyticsQuery filters analytics. Zero values mean unfiltered.
type AnalyticsQuery struct {
	Platform string
	Start    *time.Time
	End      *time.Time
}

// Overview aggregates analytics for a window.
type Overview struct {
	TotalPosts      int64            `json:"total_posts"`
	TotalEngagement int64            `json:"total_engagement"`
	TotalReach      int64            `json:"total_reach"`
	ByPlatform      []AnalyticsEntry `json:"by_platform"`
	Period          *Period          `json:"period,omitempty"`
}

// UsageStats is the provider's account-wide usage.
type UsageStats struct {
	PostsCreated      int `json:"posts_created"`
	PostsScheduled    int `json:"posts_scheduled"`
	PostsPublished    int `json:"posts_published"`
	AccountsConnected int `json:"accounts_connected"`
	ProfilesActive    int `json:"profiles_active"`
}
