package client

import "context"

// ProfileService handles social profile API calls
type ProfileService struct {
	client *Client
}

// Create creates the account's provider profile
func (s *ProfileService) Create(ctx context.Context, name string) (*Profile, error) {
	var profile Profile
	req := map[string]string{"name": name}
	if err := s.client.doRequest(ctx, "POST", "/api/v1/profiles", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Accounts lists social accounts connected to the profile
func (s *ProfileService) Accounts(ctx context.Context) ([]ConnectedAccount, error) {
	var accounts []ConnectedAccount
	if err := s.client.doRequest(ctx, "GET", "/api/v1/profiles/accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Invites creates a connection link per platform
func (s *ProfileService) Invites(ctx context.Context) ([]Invite, error) {
	var invites []Invite
	if err := s.client.doRequest(ctx, "POST", "/api/v1/profiles/invites", nil, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// Status reports which platforms are connected
func (s *ProfileService) Status(ctx context.Context) ([]ConnectionStatus, error) {
	var status []ConnectionStatus
	if err := s.client.doRequest(ctx, "GET", "/api/v1/profiles/status", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}
