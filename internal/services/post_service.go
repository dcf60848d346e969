package services

import (
	"context"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/post"
	"github.com/pulsesocial/pulse/internal/domain/social"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/metrics"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
	"github.com/pulsesocial/pulse/internal/policy"
)

const postingProvider = "late"

// Submission outcomes as counted in metrics
const (
	outcomeAccepted     = "accepted"
	outcomeDenied       = "denied"
	outcomePrecondition = "precondition_failed"
	outcomeUpstream     = "upstream_error"
	outcomeUnrecorded   = "unrecorded"
)

// PostService implements post.Service
type PostService struct {
	accounts account.Repository
	posts    post.Repository
	provider social.Provider
	logger   *logger.Logger
}

// NewPostService creates a new post service
func NewPostService(accounts account.Repository, posts post.Repository, provider social.Provider, log *logger.Logger) *PostService {
	return &PostService{
		accounts: accounts,
		posts:    posts,
		provider: provider,
		logger:   log,
	}
}

// Submit runs the usage policy, hands the post to the provider and records
// it. Nothing local changes unless the provider accepted the post, and the
// provider is called at most once per Submit.
func (s *PostService) Submit(ctx context.Context, sub post.Submission) (*post.Result, error) {
	platforms := account.SortPlatforms(sub.Platforms)
	if len(platforms) == 0 {
		return nil, errors.BadRequest("At least one platform is required")
	}

	acct, err := s.accounts.GetByID(ctx, sub.AccountID)
	if err != nil {
		return nil, err
	}

	decision := policy.Evaluate(acct, platforms)
	if !decision.Allowed() {
		metrics.RecordPolicyDenial(string(decision.Reason))
		metrics.RecordPostSubmission(outcomeDenied, 0)
		s.logger.WithFields(map[string]interface{}{
			"account_id": acct.ID,
			"reason":     decision.Reason,
			"posts_used": acct.PostsUsed,
			"platforms":  platforms,
		}).Info("Post submission denied")
		return nil, denialError(decision)
	}

	if !acct.HasProfile() {
		metrics.RecordPostSubmission(outcomePrecondition, 0)
		return nil, errors.PreconditionFailed("Complete onboarding before posting: create a posting profile and connect your accounts")
	}
	profileID := *acct.ExternalProfileID

	req := social.PostRequest{
		ProfileID:            profileID,
		Content:              sub.Content,
		Platforms:            platforms,
		ScheduledAt:          sub.Scheduling.ScheduledAt,
		MediaItems:           post.MediaItems(sub.MediaURLs),
		PlatformSpecificData: sub.PlatformSpecificData,
	}

	if sub.Scheduling.UseQueue {
		slot, err := s.provider.GetNextQueueSlot(ctx, profileID)
		if err != nil {
			metrics.RecordPostSubmission(outcomeUpstream, 0)
			return nil, upstreamError("getNextQueueSlot", err)
		}
		next := slot.NextSlot
		req.ScheduledAt = &next
		req.QueuedFromProfile = profileID
	}

	created, err := s.provider.CreatePost(ctx, req)
	if err != nil {
		metrics.RecordPostSubmission(outcomeUpstream, 0)
		return nil, upstreamError("createPost", err)
	}

	scheduledAt := created.ScheduledAt
	if scheduledAt == nil {
		scheduledAt = req.ScheduledAt
	}
	entry := &post.Log{
		AccountID:      acct.ID,
		Content:        sub.Content,
		Platforms:      platforms,
		ExternalPostID: created.ID,
		Status:         post.ParseStatus(created.Status),
		ScheduledAt:    scheduledAt,
		PublishedAt:    created.PublishedAt,
		MediaURLs:      sub.MediaURLs,
	}

	// The provider has the post now; a cancelled request must not stop
	// the local write.
	if err := s.posts.RecordSubmission(context.WithoutCancel(ctx), entry); err != nil {
		metrics.RecordPostSubmission(outcomeUnrecorded, 0)
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"account_id":       acct.ID,
			"external_post_id": created.ID,
			"cost":             entry.Cost(),
		}).Error("Post accepted by provider but usage was not recorded")
		return nil, errors.Internal("Post was accepted but could not be recorded", err)
	}

	metrics.RecordPostSubmission(outcomeAccepted, entry.Cost())
	s.logger.WithFields(map[string]interface{}{
		"account_id":       acct.ID,
		"post_log_id":      entry.ID,
		"external_post_id": created.ID,
		"cost":             entry.Cost(),
	}).Info("Post submitted")

	return &post.Result{Log: entry, Provider: created}, nil
}

// History lists the account's posts newest first
func (s *PostService) History(ctx context.Context, accountID int64, limit, offset int) ([]*post.Log, int64, error) {
	page := utils.NormalizePage(limit, offset)
	return s.posts.ListByAccount(ctx, accountID, page.Limit, page.Offset)
}

// denialError renders a policy denial. Details carry a machine readable
// reason so clients can tell an upgrade prompt from an add-on prompt.
func denialError(d policy.Decision) *errors.AppError {
	details := map[string]interface{}{
		"reason": string(d.Reason),
	}
	switch d.Reason {
	case policy.ReasonQuota:
		details["posts_used"] = d.PostsUsed
		details["posts_limit"] = d.PostsLimit
		details["cost"] = d.Cost
	case policy.ReasonAddon:
		details["addon"] = string(d.MissingAddon)
		details["platform"] = string(d.Platform)
	}
	return errors.Forbidden(d.Message()).WithDetails(details)
}

// upstreamError makes sure a provider failure surfaces as UPSTREAM_ERROR
func upstreamError(op string, err error) error {
	if errors.HasCode(err, errors.ErrCodeUpstream) {
		return err
	}
	return errors.Upstream(postingProvider, op, err)
}

var _ post.Service = (*PostService)(nil)
