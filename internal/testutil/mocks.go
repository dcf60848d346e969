package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/billing"
	"github.com/pulsesocial/pulse/internal/domain/post"
	"github.com/pulsesocial/pulse/internal/domain/social"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
)

// MockAccountRepository is an in-memory account.Repository
type MockAccountRepository struct {
	mu          sync.Mutex
	Accounts    map[int64]*account.Account
	NextID      int64
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int64]*account.Account),
		NextID:   1,
	}
}

// Seed stores a copy of a and assigns an ID when it has none
func (m *MockAccountRepository) Seed(a *account.Account) *account.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		a.ID = m.NextID
		m.NextID++
	}
	if a.Plan == "" {
		a.Plan = account.PlanFree
	}
	if a.Addons == nil {
		a.Addons = account.NewAddonSet()
	}
	m.Accounts[a.ID] = cloneAccount(a)
	return a
}

// Snapshot returns a copy of the stored account
func (m *MockAccountRepository) Snapshot(id int64) *account.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Accounts[id]
	if !ok {
		return nil
	}
	return cloneAccount(a)
}

func (m *MockAccountRepository) Create(ctx context.Context, a *account.Account) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Accounts {
		if existing.Email == a.Email {
			return errors.Conflict("An account with this email already exists")
		}
	}
	a.ID = m.NextID
	m.NextID++
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	m.Accounts[a.ID] = cloneAccount(a)
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	if a := m.Snapshot(id); a != nil {
		return a, nil
	}
	return nil, errors.NotFound("Account")
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, errors.NotFound("Account")
}

func (m *MockAccountRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*account.Account, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if a := m.bySubscription(subscriptionID); a != nil {
		return cloneAccount(a), nil
	}
	return nil, errors.NotFound("Account")
}

func (m *MockAccountRepository) SetCustomerID(ctx context.Context, id int64, customerID string) error {
	return m.mutateByID(id, func(a *account.Account) {
		a.BillingCustomerID = &customerID
	})
}

func (m *MockAccountRepository) SetExternalProfileID(ctx context.Context, id int64, profileID string) error {
	return m.mutateByID(id, func(a *account.Account) {
		a.ExternalProfileID = &profileID
	})
}

func (m *MockAccountRepository) ActivateSubscription(ctx context.Context, id int64, sub account.SubscriptionRef, plan account.Plan, addons account.AddonSet) error {
	return m.mutateByID(id, func(a *account.Account) {
		a.BillingSubscriptionID = optional(sub.SubscriptionID)
		a.BillingCustomerID = optional(sub.CustomerID)
		a.BillingPriceID = optional(sub.PriceID)
		a.BillingPeriodEnd = sub.PeriodEnd
		a.Plan = plan
		a.Addons = account.NewAddonSet(addons.Slice()...)
		a.PostsUsed = 0
		a.IsLocked = false
	})
}

func (m *MockAccountRepository) RenewPeriod(ctx context.Context, subscriptionID string, periodEnd *time.Time) (bool, error) {
	return m.mutateBySubscription(subscriptionID, func(a *account.Account) {
		if periodEnd != nil {
			a.BillingPeriodEnd = periodEnd
		}
		a.PostsUsed = 0
		a.IsLocked = false
	})
}

func (m *MockAccountRepository) RefreshSubscription(ctx context.Context, subscriptionID, priceID string, periodEnd *time.Time) (bool, error) {
	return m.mutateBySubscription(subscriptionID, func(a *account.Account) {
		if priceID != "" {
			a.BillingPriceID = &priceID
		}
		if periodEnd != nil {
			a.BillingPeriodEnd = periodEnd
		}
	})
}

func (m *MockAccountRepository) Downgrade(ctx context.Context, subscriptionID string, freeLimit int) (bool, error) {
	return m.mutateBySubscription(subscriptionID, func(a *account.Account) {
		a.Plan = account.PlanFree
		a.Addons = account.NewAddonSet()
		a.BillingSubscriptionID = nil
		a.BillingCustomerID = nil
		a.BillingPriceID = nil
		a.BillingPeriodEnd = nil
		a.IsLocked = a.PostsUsed > freeLimit
	})
}

func (m *MockAccountRepository) ResetUsageForSubscribers(ctx context.Context) (int64, error) {
	if m.UpdateError != nil {
		return 0, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.Accounts {
		if a.HasSubscription() {
			a.PostsUsed = 0
			n++
		}
	}
	return n, nil
}

func (m *MockAccountRepository) LockExpiredTrials(ctx context.Context, now time.Time, freeLimit int) (int64, error) {
	if m.UpdateError != nil {
		return 0, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.Accounts {
		if a.TrialEndsAt != nil && !a.TrialEndsAt.After(now) &&
			!a.HasSubscription() && a.Plan == account.PlanFree && a.PostsUsed > freeLimit {
			a.IsLocked = true
			n++
		}
	}
	return n, nil
}

// AddUsage charges cost to the account, as a committed submission would
func (m *MockAccountRepository) AddUsage(id int64, cost int) error {
	return m.mutateByID(id, func(a *account.Account) {
		a.PostsUsed += cost
	})
}

func (m *MockAccountRepository) mutateByID(id int64, fn func(*account.Account)) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Accounts[id]
	if !ok {
		return errors.NotFound("Account")
	}
	fn(a)
	a.UpdatedAt = time.Now()
	return nil
}

func (m *MockAccountRepository) mutateBySubscription(subscriptionID string, fn func(*account.Account)) (bool, error) {
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.bySubscription(subscriptionID)
	if a == nil {
		return false, nil
	}
	fn(a)
	a.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockAccountRepository) bySubscription(subscriptionID string) *account.Account {
	for _, a := range m.Accounts {
		if a.BillingSubscriptionID != nil && *a.BillingSubscriptionID == subscriptionID {
			return a
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cloneAccount(a *account.Account) *account.Account {
	c := *a
	c.Addons = account.NewAddonSet(a.Addons.Slice()...)
	return &c
}

// MockPostRepository is an in-memory post.Repository that charges usage
// on the paired account repository
type MockPostRepository struct {
	mu          sync.Mutex
	Logs        []*post.Log
	Accounts    *MockAccountRepository
	RecordError error
	ListError   error
}

func NewMockPostRepository(accounts *MockAccountRepository) *MockPostRepository {
	return &MockPostRepository{Accounts: accounts}
}

func (m *MockPostRepository) RecordSubmission(ctx context.Context, l *post.Log) error {
	if m.RecordError != nil {
		return m.RecordError
	}
	if err := m.Accounts.AddUsage(l.AccountID, l.Cost()); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = int64(len(m.Logs) + 1)
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	m.Logs = append(m.Logs, l)
	return nil
}

func (m *MockPostRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*post.Log, int64, error) {
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var owned []*post.Log
	for _, l := range m.Logs {
		if l.AccountID == accountID {
			owned = append(owned, l)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool { return owned[i].ID > owned[j].ID })
	total := int64(len(owned))
	if offset >= len(owned) {
		return []*post.Log{}, total, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

func (m *MockPostRepository) CountSince(ctx context.Context, accountID int64, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, l := range m.Logs {
		if l.AccountID == accountID && !l.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// MockSocialProvider is a scriptable social.Provider that records calls
type MockSocialProvider struct {
	mu    sync.Mutex
	Calls []string

	Profile       *social.Profile
	Accounts      []social.ConnectedAccount
	NextSlot      time.Time
	PostStatus    string
	Analytics     []social.AnalyticsEntry
	PostRequests  []social.PostRequest
	InviteError   map[string]error
	CreateError   error
	QueueError    error
	AccountsError error
	ProfileError  error
	AnalyticsErr  error
	UsageError    error
	LastQuery     social.AnalyticsQuery
}

func NewMockSocialProvider() *MockSocialProvider {
	return &MockSocialProvider{
		Profile:    &social.Profile{ID: "prof_123", Name: "Pulse"},
		NextSlot:   time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
		PostStatus: "scheduled",
	}
}

// CallCount returns how many times op was called
func (m *MockSocialProvider) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == op {
			n++
		}
	}
	return n
}

func (m *MockSocialProvider) record(op string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, op)
	m.mu.Unlock()
}

func (m *MockSocialProvider) CreateProfile(ctx context.Context, name, description string) (*social.Profile, error) {
	m.record("createProfile")
	if m.ProfileError != nil {
		return nil, m.ProfileError
	}
	return &social.Profile{ID: m.Profile.ID, Name: name, Description: description}, nil
}

func (m *MockSocialProvider) GetProfile(ctx context.Context, profileID string) (*social.Profile, error) {
	m.record("getProfile")
	if m.ProfileError != nil {
		return nil, m.ProfileError
	}
	return m.Profile, nil
}

func (m *MockSocialProvider) CreatePlatformInvite(ctx context.Context, profileID string, platform string) (*social.Invite, error) {
	m.record("createPlatformInvite")
	if err, ok := m.InviteError[platform]; ok {
		return nil, err
	}
	return &social.Invite{
		Platform:  account.Platform(platform),
		InviteURL: fmt.Sprintf("https://invite.test/%s/%s", profileID, platform),
	}, nil
}

func (m *MockSocialProvider) GetAccounts(ctx context.Context, profileID string) ([]social.ConnectedAccount, error) {
	m.record("getAccounts")
	if m.AccountsError != nil {
		return nil, m.AccountsError
	}
	return m.Accounts, nil
}

func (m *MockSocialProvider) CreatePost(ctx context.Context, req social.PostRequest) (*post.ProviderPost, error) {
	m.record("createPost")
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.mu.Lock()
	m.PostRequests = append(m.PostRequests, req)
	n := len(m.PostRequests)
	m.mu.Unlock()
	return &post.ProviderPost{
		ID:          fmt.Sprintf("late_post_%d", n),
		ProfileID:   req.ProfileID,
		Content:     req.Content,
		Status:      m.PostStatus,
		ScheduledAt: req.ScheduledAt,
		Platforms:   req.Platforms,
	}, nil
}

func (m *MockSocialProvider) GetNextQueueSlot(ctx context.Context, profileID string) (*social.QueueSlot, error) {
	m.record("getNextQueueSlot")
	if m.QueueError != nil {
		return nil, m.QueueError
	}
	return &social.QueueSlot{ProfileID: profileID, NextSlot: m.NextSlot, Timezone: "UTC"}, nil
}

func (m *MockSocialProvider) GetAnalytics(ctx context.Context, profileID string, q social.AnalyticsQuery) ([]social.AnalyticsEntry, error) {
	m.record("getAnalytics")
	if m.AnalyticsErr != nil {
		return nil, m.AnalyticsErr
	}
	m.mu.Lock()
	m.LastQuery = q
	m.mu.Unlock()
	return m.Analytics, nil
}

func (m *MockSocialProvider) GetUsageStats(ctx context.Context) (*social.UsageStats, error) {
	m.record("getUsageStats")
	if m.UsageError != nil {
		return nil, m.UsageError
	}
	return &social.UsageStats{ProfilesActive: 1}, nil
}

// MockGateway is a scriptable billing.Gateway
type MockGateway struct {
	mu sync.Mutex

	Subscriptions   map[string]*billing.Subscription
	Events          map[string]*billing.Event // keyed by signature
	CheckoutReqs    []billing.CheckoutRequest
	CustomersMade   int
	CustomerError   error
	CheckoutError   error
	SubscriptionErr error
	ParseError      error
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		Subscriptions: make(map[string]*billing.Subscription),
		Events:        make(map[string]*billing.Event),
	}
}

func (m *MockGateway) CreateCustomer(ctx context.Context, accountID int64, email, name string) (string, error) {
	if m.CustomerError != nil {
		return "", m.CustomerError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CustomersMade++
	return fmt.Sprintf("cus_%d", accountID), nil
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*billing.Session, error) {
	if m.CheckoutError != nil {
		return nil, m.CheckoutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutReqs = append(m.CheckoutReqs, req)
	return &billing.Session{ID: "cs_test", URL: "https://checkout.test/cs_test"}, nil
}

func (m *MockGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*billing.Session, error) {
	return &billing.Session{ID: "bps_test", URL: "https://portal.test/" + customerID}, nil
}

func (m *MockGateway) GetSubscription(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	if m.SubscriptionErr != nil {
		return nil, m.SubscriptionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Subscriptions[subscriptionID]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("subscription %s not found", subscriptionID)
}

func (m *MockGateway) ParseEvent(payload []byte, signature string) (*billing.Event, error) {
	if m.ParseError != nil {
		return nil, m.ParseError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.Events[signature]; ok {
		return e, nil
	}
	return nil, billing.ErrInvalidSignature
}
