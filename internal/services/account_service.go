package services

import (
	"context"
	"math"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/post"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
)

// AccountService implements account.Service
type AccountService struct {
	repo        account.Repository
	posts       post.Repository
	trialPeriod time.Duration
	bcryptCost  int
	logger      *logger.Logger
	now         func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(repo account.Repository, posts post.Repository, trialPeriod time.Duration, bcryptCost int, log *logger.Logger) *AccountService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		repo:        repo,
		posts:       posts,
		trialPeriod: trialPeriod,
		bcryptCost:  bcryptCost,
		logger:      log,
		now:         time.Now,
	}
}

// Register creates a free account whose trial starts now
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*account.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, errors.Conflict("An account with this email already exists")
	} else if !errors.HasCode(err, errors.ErrCodeNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	trialEnds := s.now().Add(s.trialPeriod).UTC()
	a := &account.Account{
		Email:        email,
		PasswordHash: string(hash),
		Plan:         account.PlanFree,
		Addons:       account.NewAddonSet(),
		TrialEndsAt:  &trialEnds,
	}
	if name = strings.TrimSpace(name); name != "" {
		a.Name = &name
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create account")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"account_id":    a.ID,
		"trial_ends_at": trialEnds,
	}).Info("Account registered")

	return a, nil
}

// Authenticate checks email and password
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*account.Account, error) {
	a, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return nil, errors.Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid email or password")
	}
	return a, nil
}

// GetByID retrieves an account by ID
func (s *AccountService) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// GetUsageStats reports quota consumption and recent posting activity
func (s *AccountService) GetUsageStats(ctx context.Context, id int64) (*account.UsageStats, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	recent, err := s.posts.CountSince(ctx, id, s.now().Add(-account.ActivityWindow))
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to count recent posts")
		return nil, err
	}
	limit := a.Limit()
	return &account.UsageStats{
		PostsUsed:       a.PostsUsed,
		PostsLimit:      limit,
		PercentageUsed:  int(math.Round(float64(a.PostsUsed) / float64(limit) * 100)),
		PostsLast30Days: recent,
		IsLocked:        a.IsLocked,
		TrialEndsAt:     a.TrialEndsAt,
	}, nil
}

var _ account.Service = (*AccountService)(nil)
