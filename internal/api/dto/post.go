package dto

import (
	"encoding/json"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/post"
)

// CreatePostRequest represents a post submission
type CreatePostRequest struct {
	Content              string          `json:"content" validate:"required,max=10000"`
	Platforms            []string        `json:"platforms" validate:"required,min=1,max=10,unique,dive,platform"`
	ScheduledAt          *time.Time      `json:"scheduled_at,omitempty"`
	UseQueue             bool            `json:"use_queue,omitempty"`
	MediaURLs            []string        `json:"media_urls,omitempty" validate:"omitempty,max=20,dive,url"`
	PlatformSpecificData json.RawMessage `json:"platform_specific_data,omitempty"`
}

// ToSubmission builds the domain submission for an account
func (r CreatePostRequest) ToSubmission(accountID int64) post.Submission {
	platforms := make([]account.Platform, len(r.Platforms))
	for i, p := range r.Platforms {
		platforms[i] = account.Platform(p)
	}
	return post.Submission{
		AccountID: accountID,
		Content:   r.Content,
		Platforms: platforms,
		Scheduling: post.Scheduling{
			ScheduledAt: r.ScheduledAt,
			UseQueue:    r.UseQueue,
		},
		MediaURLs:            r.MediaURLs,
		PlatformSpecificData: r.PlatformSpecificData,
	}
}

// PostHistoryResponse is one page of post logs, newest first
type PostHistoryResponse struct {
	Posts  []*post.Log `json:"posts"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
