package policy

import (
	"testing"

	"github.com/pulsesocial/pulse/internal/domain/account"
)

func acct(plan account.Plan, used int, locked bool, addons ...account.Addon) *account.Account {
	return &account.Account{
		Plan:      plan,
		PostsUsed: used,
		IsLocked:  locked,
		Addons:    account.NewAddonSet(addons...),
	}
}

func platforms(names ...string) []account.Platform {
	out := make([]account.Platform, len(names))
	for i, n := range names {
		out[i] = account.Platform(n)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		account   *account.Account
		platforms []account.Platform
		want      Reason
		wantAddon account.Addon
	}{
		{
			name:      "free account under quota",
			account:   acct(account.PlanFree, 9, false),
			platforms: platforms("x"),
			want:      ReasonNone,
		},
		{
			name:      "free account pushed over quota by second platform",
			account:   acct(account.PlanFree, 10, false),
			platforms: platforms("x", "facebook"),
			want:      ReasonQuota,
		},
		{
			name:      "cost counts platforms not posts",
			account:   acct(account.PlanFree, 8, false),
			platforms: platforms("x", "facebook", "instagram"),
			want:      ReasonQuota,
		},
		{
			name:      "exactly at limit after cost is allowed",
			account:   acct(account.PlanFree, 7, false),
			platforms: platforms("x", "facebook", "instagram"),
			want:      ReasonNone,
		},
		{
			name:      "locked wins over everything",
			account:   acct(account.PlanBusiness, 0, true, account.AddonReddit),
			platforms: platforms("reddit"),
			want:      ReasonLocked,
		},
		{
			name:      "locked even with spare quota",
			account:   acct(account.PlanFree, 0, true),
			platforms: platforms("x"),
			want:      ReasonLocked,
		},
		{
			name:      "quota checked before add-ons",
			account:   acct(account.PlanFree, 10, false),
			platforms: platforms("reddit"),
			want:      ReasonQuota,
		},
		{
			name:      "pro without reddit add-on",
			account:   acct(account.PlanPro, 0, false),
			platforms: platforms("reddit"),
			want:      ReasonAddon,
			wantAddon: account.AddonReddit,
		},
		{
			name:      "first missing add-on in canonical order",
			account:   acct(account.PlanPro, 0, false),
			platforms: platforms("reddit", "linkedin"),
			want:      ReasonAddon,
			wantAddon: account.AddonLinkedIn,
		},
		{
			name:      "holding one add-on reports the other",
			account:   acct(account.PlanPro, 0, false, account.AddonLinkedIn),
			platforms: platforms("reddit", "linkedin"),
			want:      ReasonAddon,
			wantAddon: account.AddonReddit,
		},
		{
			name:      "gated platforms with add-ons allowed",
			account:   acct(account.PlanEssentials, 50, false, account.AddonReddit, account.AddonLinkedIn),
			platforms: platforms("linkedin", "reddit", "x"),
			want:      ReasonNone,
		},
		{
			name:      "business sentinel is large but finite",
			account:   acct(account.PlanBusiness, account.UnboundedQuota, false),
			platforms: platforms("x"),
			want:      ReasonQuota,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.account, tt.platforms)
			if got.Reason != tt.want {
				t.Fatalf("Evaluate() reason = %q, want %q", got.Reason, tt.want)
			}
			if got.MissingAddon != tt.wantAddon {
				t.Errorf("Evaluate() addon = %q, want %q", got.MissingAddon, tt.wantAddon)
			}
			if got.Allowed() != (tt.want == ReasonNone) {
				t.Errorf("Allowed() = %v for reason %q", got.Allowed(), got.Reason)
			}
		})
	}
}

func TestEvaluate_QuotaDenialCarriesUsage(t *testing.T) {
	got := Evaluate(acct(account.PlanFree, 10, false), platforms("x", "facebook"))

	if got.PostsUsed != 10 || got.PostsLimit != 10 || got.Cost != 2 {
		t.Errorf("Evaluate() = used %d limit %d cost %d, want 10/10/2", got.PostsUsed, got.PostsLimit, got.Cost)
	}
	if got.Message() == "" {
		t.Error("Message() is empty for a quota denial")
	}
}

func TestEvaluate_LockedIgnoresPlan(t *testing.T) {
	for _, plan := range []account.Plan{account.PlanFree, account.PlanEssentials, account.PlanPro, account.PlanBusiness} {
		for _, used := range []int{0, 5, 10, 1000} {
			a := acct(plan, used, true, account.Addons()...)
			if got := Evaluate(a, platforms("x")); got.Reason != ReasonLocked {
				t.Errorf("Evaluate(%s, used=%d, locked) = %q, want locked", plan, used, got.Reason)
			}
		}
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	a := acct(account.PlanPro, 0, false)
	first := Evaluate(a, platforms("reddit", "linkedin", "x"))
	for i := 0; i < 20; i++ {
		if got := Evaluate(a, platforms("x", "reddit", "linkedin")); got != first {
			t.Fatalf("Evaluate() = %+v, want %+v", got, first)
		}
	}
}

func TestEvaluate_DuplicatePlatformsChargedOnce(t *testing.T) {
	got := Evaluate(acct(account.PlanFree, 9, false), platforms("x", "x"))
	if !got.Allowed() || got.Cost != 1 {
		t.Errorf("Evaluate() = %+v, want allowed with cost 1", got)
	}
}

func TestRequiredAddons(t *testing.T) {
	got := RequiredAddons(platforms("reddit", "x", "linkedin", "reddit"))
	want := []account.Addon{account.AddonLinkedIn, account.AddonReddit}
	if len(got) != len(want) {
		t.Fatalf("RequiredAddons() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RequiredAddons()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
