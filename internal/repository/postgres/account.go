package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
)

// AccountRepository implements account.Repository
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `
	id, email, name, password_hash, plan, addons, posts_used, is_locked,
	trial_ends_at, billing_subscription_id, billing_customer_id,
	billing_price_id, billing_period_end, external_profile_id,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var (
		a                      account.Account
		name                   sql.NullString
		plan, addons           string
		trialEndsAt, periodEnd sql.NullInt64
		subID, custID, priceID sql.NullString
		profileID              sql.NullString
		createdAt, updatedAt   int64
	)

	err := row.Scan(
		&a.ID, &a.Email, &name, &a.PasswordHash, &plan, &addons, &a.PostsUsed, &a.IsLocked,
		&trialEndsAt, &subID, &custID,
		&priceID, &periodEnd, &profileID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := decodeList(addons, &names); err != nil {
		return nil, err
	}

	a.Name = stringPtr(name)
	a.Plan = account.Plan(plan)
	a.Addons = account.ParseAddonSet(names)
	a.TrialEndsAt = timePtr(trialEndsAt)
	a.BillingSubscriptionID = stringPtr(subID)
	a.BillingCustomerID = stringPtr(custID)
	a.BillingPriceID = stringPtr(priceID)
	a.BillingPeriodEnd = timePtr(periodEnd)
	a.ExternalProfileID = stringPtr(profileID)
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	a.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &a, nil
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Plan == "" {
		a.Plan = account.PlanFree
	}

	addons, err := encodeList(a.Addons.Strings())
	if err != nil {
		return errors.Internal("Failed to encode add-ons", err)
	}

	query := `
		INSERT INTO accounts (
			email, name, password_hash, plan, addons, posts_used, is_locked,
			trial_ends_at, external_profile_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err = r.db.QueryRowContext(ctx, query,
		a.Email, nullString(a.Name), a.PasswordHash, string(a.Plan), addons, a.PostsUsed, a.IsLocked,
		nullUnix(a.TrialEndsAt), nullString(a.ExternalProfileID), now.Unix(), now.Unix(),
	).Scan(&a.ID)
	if isUniqueViolation(err) {
		return errors.Conflict("An account with this email already exists")
	}
	if err != nil {
		return errors.DatabaseError("Failed to create account", err)
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	return r.getOne(ctx, `SELECT`+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	return r.getOne(ctx, `SELECT`+accountColumns+` FROM accounts WHERE email = $1`, email)
}

// GetBySubscriptionID retrieves the account owning a subscription
func (r *AccountRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*account.Account, error) {
	return r.getOne(ctx, `SELECT`+accountColumns+` FROM accounts WHERE billing_subscription_id = $1`, subscriptionID)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg interface{}) (*account.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Account")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get account", err)
	}
	return a, nil
}

// SetCustomerID stores the payment customer id
func (r *AccountRepository) SetCustomerID(ctx context.Context, id int64, customerID string) error {
	return r.updateByID(ctx, `
		UPDATE accounts SET billing_customer_id = $1, updated_at = $2 WHERE id = $3
	`, customerID, time.Now().Unix(), id)
}

// SetExternalProfileID stores the posting provider profile id
func (r *AccountRepository) SetExternalProfileID(ctx context.Context, id int64, profileID string) error {
	return r.updateByID(ctx, `
		UPDATE accounts SET external_profile_id = $1, updated_at = $2 WHERE id = $3
	`, profileID, time.Now().Unix(), id)
}

// ActivateSubscription attaches a subscription after checkout
func (r *AccountRepository) ActivateSubscription(ctx context.Context, id int64, sub account.SubscriptionRef, plan account.Plan, addons account.AddonSet) error {
	encoded, err := encodeList(addons.Strings())
	if err != nil {
		return errors.Internal("Failed to encode add-ons", err)
	}

	return r.updateByID(ctx, `
		UPDATE accounts
		SET billing_subscription_id = $1,
			billing_customer_id = $2,
			billing_price_id = $3,
			billing_period_end = $4,
			plan = $5,
			addons = $6,
			posts_used = 0,
			is_locked = FALSE,
			updated_at = $7
		WHERE id = $8
	`, sub.SubscriptionID, nullString(&sub.CustomerID), nullString(&sub.PriceID), nullUnix(sub.PeriodEnd),
		string(plan), encoded, time.Now().Unix(), id)
}

// RenewPeriod starts a fresh paid period
func (r *AccountRepository) RenewPeriod(ctx context.Context, subscriptionID string, periodEnd *time.Time) (bool, error) {
	return r.updateBySubscription(ctx, `
		UPDATE accounts
		SET billing_period_end = COALESCE($1, billing_period_end),
			posts_used = 0,
			is_locked = FALSE,
			updated_at = $2
		WHERE billing_subscription_id = $3
	`, nullUnix(periodEnd), time.Now().Unix(), subscriptionID)
}

// RefreshSubscription updates the price and period end
func (r *AccountRepository) RefreshSubscription(ctx context.Context, subscriptionID, priceID string, periodEnd *time.Time) (bool, error) {
	return r.updateBySubscription(ctx, `
		UPDATE accounts
		SET billing_price_id = COALESCE($1, billing_price_id),
			billing_period_end = COALESCE($2, billing_period_end),
			updated_at = $3
		WHERE billing_subscription_id = $4
	`, nullString(&priceID), nullUnix(periodEnd), time.Now().Unix(), subscriptionID)
}

// Downgrade returns an account to the free tier when its subscription ends
func (r *AccountRepository) Downgrade(ctx context.Context, subscriptionID string, freeLimit int) (bool, error) {
	return r.updateBySubscription(ctx, `
		UPDATE accounts
		SET plan = 'free',
			addons = '[]',
			billing_subscription_id = NULL,
			billing_customer_id = NULL,
			billing_price_id = NULL,
			billing_period_end = NULL,
			is_locked = (posts_used > $1),
			updated_at = $2
		WHERE billing_subscription_id = $3
	`, freeLimit, time.Now().Unix(), subscriptionID)
}

// ResetUsageForSubscribers zeroes usage for every paying account
func (r *AccountRepository) ResetUsageForSubscribers(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET posts_used = 0, updated_at = $1
		WHERE billing_subscription_id IS NOT NULL
	`, time.Now().Unix())
	if err != nil {
		return 0, errors.DatabaseError("Failed to reset usage", err)
	}
	return rowsAffected(result)
}

// LockExpiredTrials locks expired free trials over the free limit
func (r *AccountRepository) LockExpiredTrials(ctx context.Context, now time.Time, freeLimit int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET is_locked = TRUE, updated_at = $1
		WHERE trial_ends_at IS NOT NULL
			AND trial_ends_at <= $2
			AND billing_subscription_id IS NULL
			AND plan = 'free'
			AND posts_used > $3
	`, time.Now().Unix(), now.Unix(), freeLimit)
	if err != nil {
		return 0, errors.DatabaseError("Failed to lock expired trials", err)
	}
	return rowsAffected(result)
}

func (r *AccountRepository) updateByID(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return errors.Conflict("Subscription is already attached to another account")
	}
	if err != nil {
		return errors.DatabaseError("Failed to update account", err)
	}

	rows, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("Account")
	}
	return nil
}

func (r *AccountRepository) updateBySubscription(ctx context.Context, query string, args ...interface{}) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.DatabaseError("Failed to update account", err)
	}
	rows, err := rowsAffected(result)
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func rowsAffected(result sql.Result) (int64, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get affected rows", err)
	}
	return rows, nil
}

var _ account.Repository = (*AccountRepository)(nil)
