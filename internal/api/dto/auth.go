package dto

import (
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name,omitempty" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RefreshTokenRequest represents a refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	Account      *SessionDTO `json:"account"`
}

// SessionDTO is the signed-in account as the client sees it
type SessionDTO struct {
	ID                int64        `json:"id"`
	Name              *string      `json:"name,omitempty"`
	Email             string       `json:"email"`
	Plan              account.Plan `json:"plan"`
	Addons            []string     `json:"addons"`
	PostsUsed         int          `json:"posts_used"`
	PostsLimit        int          `json:"posts_limit"`
	IsLocked          bool         `json:"is_locked"`
	TrialEndsAt       *time.Time   `json:"trial_ends_at,omitempty"`
	ExternalProfileID *string      `json:"external_profile_id,omitempty"`
}

// NewSessionDTO converts an account into its session view
func NewSessionDTO(a *account.Account) *SessionDTO {
	return &SessionDTO{
		ID:                a.ID,
		Name:              a.Name,
		Email:             a.Email,
		Plan:              a.Plan,
		Addons:            a.Addons.Strings(),
		PostsUsed:         a.PostsUsed,
		PostsLimit:        a.Limit(),
		IsLocked:          a.IsLocked,
		TrialEndsAt:       a.TrialEndsAt,
		ExternalProfileID: a.ExternalProfileID,
	}
}
