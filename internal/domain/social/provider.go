package social

import (
	"context"

	"github.com/pulsesocial/pulse/internal/domain/post"
)

// Provider is the external posting provider. Every call is a bounded
// synchronous request; failures come back as upstream errors naming the
// call.
type Provider interface {
	CreateProfile(ctx context.Context, name, description string) (*Profile, error)
	GetProfile(ctx context.Context, profileID string) (*Profile, error)
	CreatePlatformInvite(ctx context.Context, profileID string, platform string) (*Invite, error)
	GetAccounts(ctx context.Context, profileID string) ([]ConnectedAccount, error)
	CreatePost(ctx context.Context, req PostRequest) (*post.ProviderPost, error)
	GetNextQueueSlot(ctx context.Context, profileID string) (*QueueSlot, error)
	GetAnalytics(ctx context.Context, profileID string, q AnalyticsQuery) ([]AnalyticsEntry, error)
	GetUsageStats(ctx context.Context) (*UsageStats, error)
}
