package post

import (
	"encoding/json"
	"net/url"
	"regexp"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
)

// Status is the provider-reported state of a submitted post.
type Status string

// Post statuses
const (
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// ParseStatus maps a provider status onto a Status. Anything unrecognised
// is treated as scheduled, since the provider accepted the post.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusPublished, StatusFailed:
		return Status(s)
	default:
		return StatusScheduled
	}
}

// Log is the append-only record of a post the provider accepted.
type Log struct {
	ID             int64              `json:"id"`
	AccountID      int64              `json:"account_id"`
	Content        string             `json:"content"`
	Platforms      []account.Platform `json:"platforms"`
	ExternalPostID string             `json:"external_post_id"`
	Status         Status             `json:"status"`
	ScheduledAt    *time.Time         `json:"scheduled_at,omitempty"`
	PublishedAt    *time.Time         `json:"published_at,omitempty"`
	MediaURLs      []string           `json:"media_urls"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Cost is the quota charged for the log: one unit per platform.
func (l *Log) Cost() int {
	return len(l.Platforms)
}

// Scheduling says when a post should go out. With UseQueue the time is
// taken from the provider's next free queue slot and ScheduledAt is ignored.
type Scheduling struct {
	ScheduledAt *time.Time
	UseQueue    bool
}

// MediaType is the kind of a media attachment.
type MediaType string

// Media types
const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaItem is a media attachment forwarded to the provider.
type MediaItem struct {
	URL  string    `json:"url"`
	Type MediaType `json:"type"`
}

var videoExt = regexp.MustCompile(`(?i)\.(mp4|mov|avi)$`)

// MediaItemFor classifies url by its file extension.
func MediaItemFor(raw string) MediaItem {
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}
	if videoExt.MatchString(path) {
		return MediaItem{URL: raw, Type: MediaVideo}
	}
	return MediaItem{URL: raw, Type: MediaImage}
}

// MediaItems classifies every url in urls. It returns nil for no urls.
func MediaItems(urls []string) []MediaItem {
	if len(urls) == 0 {
		return nil
	}
	items := make([]MediaItem, len(urls))
	for i, u := range urls {
		items[i] = MediaItemFor(u)
	}
	return items
}

// Submission is the input of a post submission.
type Submission struct {
	AccountID            int64
	Content              string
	Platforms            []account.Platform
	Scheduling           Scheduling
	MediaURLs            []string
	PlatformSpecificData json.RawMessage
}

// ProviderPost is the posting provider's view of a post.
type ProviderPost struct {
	ID          string             `json:"id"`
	ProfileID   string             `json:"profile_id"`
	Content     string             `json:"content"`
	Status      string             `json:"status"`
	ScheduledAt *time.Time         `json:"scheduled_at,omitempty"`
	PublishedAt *time.Time         `json:"published_at,omitempty"`
	Platforms   []account.Platform `json:"platforms"`
}

// Result is what a successful submission returns.
type Result struct {
	Log      *Log          `json:"log"`
	Provider *ProviderPost `json:"provider"`
}
