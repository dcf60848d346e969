package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/testutil"
)

func newAccount(t *testing.T, repo *AccountRepository, email string) *account.Account {
	t.Helper()
	trial := time.Now().Add(7 * 24 * time.Hour)
	a := &account.Account{
		Email:        email,
		PasswordHash: "hash",
		Plan:         account.PlanFree,
		Addons:       account.NewAddonSet(),
		TrialEndsAt:  &trial,
	}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return a
}

func TestAccountRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewAccountRepository(db)
	ctx := context.Background()

	a := newAccount(t, repo, "test@example.com")
	if a.ID == 0 {
		t.Fatal("Create() did not set account ID")
	}

	dup := &account.Account{Email: "test@example.com", PasswordHash: "x"}
	err := repo.Create(ctx, dup)
	if !errors.HasCode(err, errors.ErrCodeConflict) {
		t.Errorf("Create() duplicate error = %v, want CONFLICT", err)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Plan != account.PlanFree || got.PostsUsed != 0 || got.IsLocked {
		t.Errorf("GetByID() = %+v, want fresh free account", got)
	}
	if got.TrialEndsAt == nil || got.TrialEndsAt.Unix() != a.TrialEndsAt.Unix() {
		t.Errorf("GetByID() trial = %v, want %v", got.TrialEndsAt, a.TrialEndsAt)
	}
}

func TestAccountRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	_, err := NewAccountRepository(db).GetByID(context.Background(), 999)
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("GetByID() error = %v, want NOT_FOUND", err)
	}
}

func TestAccountRepository_SubscriptionLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewAccountRepository(db)
	ctx := context.Background()
	a := newAccount(t, repo, "sub@example.com")

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second)
	sub := account.SubscriptionRef{
		SubscriptionID: "sub_1",
		CustomerID:     "cus_1",
		PriceID:        "price_pro",
		PeriodEnd:      &periodEnd,
	}
	if _, err := db.Exec("UPDATE accounts SET posts_used = 42, is_locked = TRUE WHERE id = $1", a.ID); err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	if err := repo.ActivateSubscription(ctx, a.ID, sub, account.PlanPro, account.NewAddonSet(account.AddonAnalytics)); err != nil {
		t.Fatalf("ActivateSubscription() error = %v", err)
	}

	got, err := repo.GetBySubscriptionID(ctx, "sub_1")
	if err != nil {
		t.Fatalf("GetBySubscriptionID() error = %v", err)
	}
	if got.Plan != account.PlanPro || !got.Addons.Has(account.AddonAnalytics) {
		t.Errorf("plan/addons = %s/%v, want pro/[analytics]", got.Plan, got.Addons.Strings())
	}
	if got.PostsUsed != 0 || got.IsLocked {
		t.Errorf("usage = %d locked = %v, want 0/false", got.PostsUsed, got.IsLocked)
	}
	if got.BillingPeriodEnd == nil || !got.BillingPeriodEnd.Equal(periodEnd) {
		t.Errorf("period end = %v, want %v", got.BillingPeriodEnd, periodEnd)
	}

	newEnd := periodEnd.Add(30 * 24 * time.Hour)
	matched, err := repo.RefreshSubscription(ctx, "sub_1", "price_business", &newEnd)
	if err != nil || !matched {
		t.Fatalf("RefreshSubscription() = %v, %v", matched, err)
	}
	got, _ = repo.GetByID(ctx, a.ID)
	if *got.BillingPriceID != "price_business" || got.Plan != account.PlanPro {
		t.Errorf("after refresh price = %s plan = %s", *got.BillingPriceID, got.Plan)
	}

	matched, err = repo.RefreshSubscription(ctx, "sub_unknown", "price_x", nil)
	if err != nil || matched {
		t.Errorf("RefreshSubscription(unknown) = %v, %v, want false, nil", matched, err)
	}
}

func TestAccountRepository_Downgrade(t *testing.T) {
	tests := []struct {
		name       string
		postsUsed  int
		wantLocked bool
	}{
		{"within free limit stays unlocked", 8, false},
		{"at free limit stays unlocked", 10, false},
		{"over free limit gets locked", 11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewTestDB(t)
			defer testutil.CleanupDB(db)

			repo := NewAccountRepository(db)
			ctx := context.Background()
			a := newAccount(t, repo, "down@example.com")
			sub := account.SubscriptionRef{SubscriptionID: "sub_d", CustomerID: "cus_d", PriceID: "price"}
			if err := repo.ActivateSubscription(ctx, a.ID, sub, account.PlanBusiness, account.NewAddonSet(account.AddonReddit)); err != nil {
				t.Fatalf("ActivateSubscription() error = %v", err)
			}
			db.Exec("UPDATE accounts SET posts_used = $1 WHERE id = $2", tt.postsUsed, a.ID)

			for i := 0; i < 2; i++ {
				matched, err := repo.Downgrade(ctx, "sub_d", account.FreeLimit)
				if err != nil {
					t.Fatalf("Downgrade() error = %v", err)
				}
				if matched != (i == 0) {
					t.Errorf("Downgrade() call %d matched = %v", i, matched)
				}
			}

			got, _ := repo.GetByID(ctx, a.ID)
			if got.Plan != account.PlanFree || len(got.Addons) != 0 {
				t.Errorf("plan/addons = %s/%v, want free/[]", got.Plan, got.Addons.Strings())
			}
			if got.BillingSubscriptionID != nil || got.BillingCustomerID != nil || got.BillingPriceID != nil || got.BillingPeriodEnd != nil {
				t.Error("billing references not cleared")
			}
			if got.IsLocked != tt.wantLocked {
				t.Errorf("IsLocked = %v, want %v", got.IsLocked, tt.wantLocked)
			}
		})
	}
}

func TestAccountRepository_MaintenanceSweeps(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewAccountRepository(db)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour).Unix()

	paying := newAccount(t, repo, "paying@example.com")
	repo.ActivateSubscription(ctx, paying.ID, account.SubscriptionRef{SubscriptionID: "sub_p"}, account.PlanPro, nil)
	db.Exec("UPDATE accounts SET posts_used = 300 WHERE id = $1", paying.ID)

	heavyFree := newAccount(t, repo, "heavy@example.com")
	db.Exec("UPDATE accounts SET posts_used = 11, trial_ends_at = $1 WHERE id = $2", past, heavyFree.ID)

	lightFree := newAccount(t, repo, "light@example.com")
	db.Exec("UPDATE accounts SET posts_used = 8, trial_ends_at = $1 WHERE id = $2", past, lightFree.ID)

	unpaid := newAccount(t, repo, "unpaid@example.com")
	db.Exec("UPDATE accounts SET posts_used = 50 WHERE id = $1", unpaid.ID)

	n, err := repo.ResetUsageForSubscribers(ctx)
	if err != nil || n != 1 {
		t.Fatalf("ResetUsageForSubscribers() = %d, %v, want 1", n, err)
	}
	if got, _ := repo.GetByID(ctx, paying.ID); got.PostsUsed != 0 {
		t.Errorf("paying PostsUsed = %d, want 0", got.PostsUsed)
	}
	if got, _ := repo.GetByID(ctx, unpaid.ID); got.PostsUsed != 50 {
		t.Errorf("unpaid PostsUsed = %d, want 50", got.PostsUsed)
	}

	n, err = repo.LockExpiredTrials(ctx, time.Now(), account.FreeLimit)
	if err != nil || n != 1 {
		t.Fatalf("LockExpiredTrials() = %d, %v, want 1", n, err)
	}
	if got, _ := repo.GetByID(ctx, heavyFree.ID); !got.IsLocked {
		t.Error("heavy free account not locked")
	}
	if got, _ := repo.GetByID(ctx, lightFree.ID); got.IsLocked {
		t.Error("light free account locked")
	}
	if got, _ := repo.GetByID(ctx, unpaid.ID); got.IsLocked {
		t.Error("account still in trial locked")
	}
}
