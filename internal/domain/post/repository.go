package post

import (
	"context"
	"time"
)

// Repository defines the interface for post log data access
type Repository interface {
	// RecordSubmission writes l and charges its cost to the owning account
	// in one transaction. Either both writes land or neither does.
	RecordSubmission(ctx context.Context, l *Log) error

	// ListByAccount returns the account's logs, newest first, and the total
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*Log, int64, error)

	// CountSince counts the account's logs created at or after since
	CountSince(ctx context.Context, accountID int64, since time.Time) (int64, error)
}
