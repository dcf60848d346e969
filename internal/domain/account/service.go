package account

import "context"

// Service defines the account business logic exposed to handlers
type Service interface {
	// Register creates a free account with a fresh trial window
	Register(ctx context.Context, name, email, password string) (*Account, error)

	// Authenticate verifies credentials and returns the account
	Authenticate(ctx context.Context, email, password string) (*Account, error)

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id int64) (*Account, error)

	// GetUsageStats returns quota consumption for the account
	GetUsageStats(ctx context.Context, id int64) (*UsageStats, error)
}
