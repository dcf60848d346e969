package handlers

import (
	"net/http"

	"github.com/pulsesocial/pulse/internal/api/dto"
	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/post"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
	"github.com/pulsesocial/pulse/internal/pkg/validator"
)

// PostHandler handles post submission and history
type PostHandler struct {
	posts     post.Service
	accounts  account.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts post.Service, accounts account.Service, log *logger.Logger, val *validator.Validator) *PostHandler {
	return &PostHandler{
		posts:     posts,
		accounts:  accounts,
		logger:    log,
		validator: val,
	}
}

// Create submits a post to the selected platforms
// @Summary Create a post
// @Description Checks the usage policy, forwards the post to the posting provider and charges one unit per platform
// @Tags Posts
// @Accept json
// @Produce json
// @Param request body dto.CreatePostRequest true "Post"
// @Success 201 {object} post.Result
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 403 {object} utils.ErrorResponse "Denied by usage policy"
// @Failure 412 {object} utils.ErrorResponse "No posting profile"
// @Failure 502 {object} utils.ErrorResponse "Posting provider failed"
// @Security BearerAuth
// @Router /posts [post]
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.posts.Submit(r.Context(), req.ToSubmission(accountID))
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, result)
}

// History lists the account's submitted posts, newest first
// @Summary Post history
// @Tags Posts
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PostHistoryResponse
// @Security BearerAuth
// @Router /posts [get]
func (h *PostHandler) History(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	page := utils.ParsePage(r)
	logs, total, err := h.posts.History(r.Context(), accountID, page.Limit, page.Offset)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}
	if logs == nil {
		logs = []*post.Log{}
	}

	utils.WriteSuccess(w, http.StatusOK, dto.PostHistoryResponse{
		Posts:  logs,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// Usage returns quota consumption for the current period
// @Summary Usage stats
// @Tags Posts
// @Produce json
// @Success 200 {object} account.UsageStats
// @Security BearerAuth
// @Router /usage [get]
func (h *PostHandler) Usage(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	stats, err := h.accounts.GetUsageStats(r.Context(), accountID)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, stats)
}
