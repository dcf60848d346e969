package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/social"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/testutil"
)

func newProfileFixture() (*ProfileService, *testutil.MockAccountRepository, *testutil.MockSocialProvider) {
	repo := testutil.NewMockAccountRepository()
	provider := testutil.NewMockSocialProvider()
	return NewProfileService(repo, provider, testutil.NewTestLogger()), repo, provider
}

func TestProfileService_CreateProfile(t *testing.T) {
	service, repo, _ := newProfileFixture()
	a := repo.Seed(&account.Account{Email: "a@example.com"})

	p, err := service.CreateProfile(context.Background(), a.ID, "My brand")
	if err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	if p.ID != "prof_123" || p.Name != "My brand" {
		t.Errorf("CreateProfile() = %+v", p)
	}
	if got := repo.Snapshot(a.ID).ExternalProfileID; got == nil || *got != "prof_123" {
		t.Errorf("external_profile_id = %v, want prof_123", got)
	}

	if _, err := service.CreateProfile(context.Background(), a.ID, "Again"); !errors.HasCode(err, errors.ErrCodeConflict) {
		t.Errorf("second CreateProfile() error = %v, want CONFLICT", err)
	}
}

func TestProfileService_GetConnectedAccounts(t *testing.T) {
	service, repo, provider := newProfileFixture()
	fresh := repo.Seed(&account.Account{Email: "a@example.com"})
	ready := repo.Seed(onboarded(&account.Account{Email: "b@example.com"}))
	provider.Accounts = []social.ConnectedAccount{{ID: "acc_1", Platform: account.PlatformX, Username: "ada", Connected: true}}

	got, err := service.GetConnectedAccounts(context.Background(), fresh.ID)
	if err != nil || len(got) != 0 {
		t.Errorf("GetConnectedAccounts(no profile) = %v, %v; want empty", got, err)
	}
	if provider.CallCount("getAccounts") != 0 {
		t.Error("provider called without a profile")
	}

	got, err = service.GetConnectedAccounts(context.Background(), ready.ID)
	if err != nil || len(got) != 1 {
		t.Errorf("GetConnectedAccounts() = %v, %v; want 1 account", got, err)
	}
}

func TestProfileService_CreatePlatformInvites(t *testing.T) {
	service, repo, provider := newProfileFixture()
	a := repo.Seed(onboarded(&account.Account{Email: "a@example.com"}))

	invites, err := service.CreatePlatformInvites(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("CreatePlatformInvites() error = %v", err)
	}
	platforms := account.Platforms()
	if len(invites) != len(platforms) {
		t.Fatalf("invites = %d, want %d", len(invites), len(platforms))
	}
	for i, p := range platforms {
		if invites[i].Platform != p {
			t.Errorf("invites[%d].platform = %q, want %q", i, invites[i].Platform, p)
		}
	}

	provider.InviteError = map[string]error{"tiktok": fmt.Errorf("status 500")}
	if _, err := service.CreatePlatformInvites(context.Background(), a.ID); !errors.HasCode(err, errors.ErrCodeUpstream) {
		t.Errorf("CreatePlatformInvites() error = %v, want UPSTREAM_ERROR", err)
	}

	fresh := repo.Seed(&account.Account{Email: "b@example.com"})
	if _, err := service.CreatePlatformInvites(context.Background(), fresh.ID); !errors.HasCode(err, errors.ErrCodePrecondition) {
		t.Errorf("CreatePlatformInvites(no profile) error = %v, want PRECONDITION_FAILED", err)
	}
}

func TestProfileService_CheckConnectionStatus(t *testing.T) {
	service, repo, provider := newProfileFixture()
	a := repo.Seed(onboarded(&account.Account{Email: "a@example.com"}))
	provider.Accounts = []social.ConnectedAccount{
		{Platform: account.PlatformX, Connected: true},
		{Platform: account.PlatformTikTok, Connected: false},
	}

	status, err := service.CheckConnectionStatus(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("CheckConnectionStatus() error = %v", err)
	}
	for _, s := range status {
		want := s.Platform == account.PlatformX
		if s.Connected != want {
			t.Errorf("%s connected = %v, want %v", s.Platform, s.Connected, want)
		}
	}

	fresh := repo.Seed(&account.Account{Email: "b@example.com"})
	status, _ = service.CheckConnectionStatus(context.Background(), fresh.ID)
	if len(status) != len(account.Platforms()) {
		t.Fatalf("status = %d entries, want %d", len(status), len(account.Platforms()))
	}
	for _, s := range status {
		if s.Connected {
			t.Errorf("%s connected without a profile", s.Platform)
		}
	}
}
