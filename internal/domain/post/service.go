package post

import "context"

// Service defines post submission and history
type Service interface {
	// Submit checks usage policy, forwards the post to the provider and
	// records it locally.
	Submit(ctx context.Context, sub Submission) (*Result, error)

	// History lists the account's submitted posts, newest first
	History(ctx context.Context, accountID int64, limit, offset int) ([]*Log, int64, error)
}
