package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/social"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
)

// maxInviteFanout bounds concurrent invite requests to the provider
const maxInviteFanout = 4

// ProfileService implements social.ProfileService
type ProfileService struct {
	accounts account.Repository
	provider social.Provider
	logger   *logger.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(accounts account.Repository, provider social.Provider, log *logger.Logger) *ProfileService {
	return &ProfileService{
		accounts: accounts,
		provider: provider,
		logger:   log,
	}
}

// CreateProfile creates the account's posting profile
func (s *ProfileService) CreateProfile(ctx context.Context, accountID int64, name string) (*social.Profile, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.HasProfile() {
		return nil, errors.Conflict("A posting profile already exists for this account")
	}

	profile, err := s.provider.CreateProfile(ctx, name, "")
	if err != nil {
		return nil, upstreamError("createProfile", err)
	}
	if err := s.accounts.SetExternalProfileID(ctx, acct.ID, profile.ID); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"account_id": acct.ID,
			"profile_id": profile.ID,
		}).Error("Profile created but not stored on account")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"account_id": acct.ID,
		"profile_id": profile.ID,
	}).Info("Posting profile created")
	return profile, nil
}

// GetConnectedAccounts lists connected accounts; empty before onboarding
func (s *ProfileService) GetConnectedAccounts(ctx context.Context, accountID int64) ([]social.ConnectedAccount, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.HasProfile() {
		return []social.ConnectedAccount{}, nil
	}
	accounts, err := s.provider.GetAccounts(ctx, *acct.ExternalProfileID)
	if err != nil {
		return nil, upstreamError("getAccounts", err)
	}
	if accounts == nil {
		accounts = []social.ConnectedAccount{}
	}
	return accounts, nil
}

// CreatePlatformInvites creates one invite per platform in canonical order.
// The first failure cancels the rest.
func (s *ProfileService) CreatePlatformInvites(ctx context.Context, accountID int64) ([]social.Invite, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.HasProfile() {
		return nil, errors.PreconditionFailed("Create a posting profile first")
	}
	profileID := *acct.ExternalProfileID

	platforms := account.Platforms()
	invites := make([]social.Invite, len(platforms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInviteFanout)
	for i, p := range platforms {
		i, p := i, p
		g.Go(func() error {
			invite, err := s.provider.CreatePlatformInvite(gctx, profileID, string(p))
			if err != nil {
				return err
			}
			invites[i] = *invite
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, upstreamError("createPlatformInvite", err)
	}
	return invites, nil
}

// CheckConnectionStatus reports per platform whether an account is
// connected. Every platform reads as disconnected before onboarding.
func (s *ProfileService) CheckConnectionStatus(ctx context.Context, accountID int64) ([]social.ConnectionStatus, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	connected := make(map[account.Platform]bool)
	if acct.HasProfile() {
		accounts, err := s.provider.GetAccounts(ctx, *acct.ExternalProfileID)
		if err != nil {
			return nil, upstreamError("getAccounts", err)
		}
		for _, a := range accounts {
			if a.Connected {
				connected[a.Platform] = true
			}
		}
	}

	platforms := account.Platforms()
	status := make([]social.ConnectionStatus, len(platforms))
	for i, p := range platforms {
		status[i] = social.ConnectionStatus{Platform: p, Connected: connected[p]}
	}
	return status, nil
}

var _ social.ProfileService = (*ProfileService)(nil)
