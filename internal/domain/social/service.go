package social

import "context"

// ProfileService manages onboarding with the posting provider
type ProfileService interface {
	CreateProfile(ctx context.Context, accountID int64, name string) (*Profile, error)
	GetConnectedAccounts(ctx context.Context, accountID int64) ([]ConnectedAccount, error)
	CreatePlatformInvites(ctx context.Context, accountID int64) ([]Invite, error)
	CheckConnectionStatus(ctx context.Context, accountID int64) ([]ConnectionStatus, error)
}

// AnalyticsService serves engagement analytics to accounts holding the
// analytics add-on
type AnalyticsService interface {
	Get(ctx context.Context, accountID int64, q AnalyticsQuery) ([]AnalyticsEntry, error)
	GetOverview(ctx context.Context, accountID int64) (*Overview, error)
}
