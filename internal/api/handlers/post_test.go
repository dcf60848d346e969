package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulsesocial/pulse/internal/api/dto"
	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/post"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/validator"
	"github.com/pulsesocial/pulse/internal/services"
	"github.com/pulsesocial/pulse/internal/testutil"
)

type postFixture struct {
	handler  *PostHandler
	accounts *testutil.MockAccountRepository
	provider *testutil.MockSocialProvider
}

func newPostFixture() postFixture {
	log := testutil.NewTestLogger()
	accounts := testutil.NewMockAccountRepository()
	posts := testutil.NewMockPostRepository(accounts)
	provider := testutil.NewMockSocialProvider()

	postService := services.NewPostService(accounts, posts, provider, log)
	accountService := services.NewAccountService(accounts, posts, 0, bcrypt.MinCost, log)

	return postFixture{
		handler:  NewPostHandler(postService, accountService, log, validator.New()),
		accounts: accounts,
		provider: provider,
	}
}

func TestPostHandler_Create(t *testing.T) {
	f := newPostFixture()
	ready := f.accounts.Seed(&account.Account{
		Email:             "a@example.com",
		Plan:              account.PlanEssentials,
		ExternalProfileID: testutil.StrPtr("prof_1"),
	})

	req := asAccount(newJSONRequest(t, http.MethodPost, "/api/v1/posts", dto.CreatePostRequest{
		Content:   "launch day",
		Platforms: []string{"x", "instagram"},
		MediaURLs: []string{"https://cdn.test/clip.mp4"},
	}), ready.ID)
	rr := httptest.NewRecorder()
	f.handler.Create(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var result post.Result
	env := decodeEnvelope(t, rr, &result)
	assert.True(t, env.Success)
	assert.Equal(t, 2, result.Log.Cost())
	assert.Equal(t, []account.Platform{account.PlatformInstagram, account.PlatformX}, result.Log.Platforms)
	assert.Equal(t, 2, f.accounts.Snapshot(ready.ID).PostsUsed)
}

func TestPostHandler_CreateRejects(t *testing.T) {
	f := newPostFixture()
	free := f.accounts.Seed(&account.Account{
		Email:             "free@example.com",
		PostsUsed:         10,
		ExternalProfileID: testutil.StrPtr("prof_1"),
	})
	noProfile := f.accounts.Seed(&account.Account{Email: "new@example.com"})

	tests := []struct {
		name       string
		accountID  int64
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unauthenticated", 0, `{"content":"hi","platforms":["x"]}`, http.StatusUnauthorized, errors.ErrCodeUnauthorized},
		{"invalid json", free.ID, `{"content":`, http.StatusBadRequest, errors.ErrCodeBadRequest},
		{"no platforms", free.ID, `{"content":"hi","platforms":[]}`, http.StatusBadRequest, errors.ErrCodeValidation},
		{"unknown platform", free.ID, `{"content":"hi","platforms":["myspace"]}`, http.StatusBadRequest, errors.ErrCodeValidation},
		{"duplicate platforms", free.ID, `{"content":"hi","platforms":["x","x"]}`, http.StatusBadRequest, errors.ErrCodeValidation},
		{"empty content", free.ID, `{"content":"","platforms":["x"]}`, http.StatusBadRequest, errors.ErrCodeValidation},
		{"quota exhausted", free.ID, `{"content":"hi","platforms":["x"]}`, http.StatusForbidden, errors.ErrCodeForbidden},
		{"no profile", noProfile.ID, `{"content":"hi","platforms":["x"]}`, http.StatusPreconditionFailed, errors.ErrCodePrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", stringsReader(tt.body))
			if tt.accountID != 0 {
				req = asAccount(req, tt.accountID)
			}
			rr := httptest.NewRecorder()
			f.handler.Create(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			env := decodeEnvelope(t, rr, nil)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
	assert.Zero(t, f.provider.CallCount("createPost"), "provider must not be called for rejected posts")
}

func TestPostHandler_DenialDetails(t *testing.T) {
	f := newPostFixture()
	a := f.accounts.Seed(&account.Account{
		Email:             "a@example.com",
		Plan:              account.PlanPro,
		ExternalProfileID: testutil.StrPtr("prof_1"),
	})

	req := asAccount(newJSONRequest(t, http.MethodPost, "/api/v1/posts", dto.CreatePostRequest{
		Content:   "hi",
		Platforms: []string{"reddit"},
	}), a.ID)
	rr := httptest.NewRecorder()
	f.handler.Create(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	env := decodeEnvelope(t, rr, nil)
	details, ok := env.Error.Details.(map[string]interface{})
	require.True(t, ok, "details = %#v", env.Error.Details)
	assert.Equal(t, "addon", details["reason"])
	assert.Equal(t, "reddit", details["addon"])
}

func TestPostHandler_History(t *testing.T) {
	f := newPostFixture()
	a := f.accounts.Seed(&account.Account{
		Email:             "a@example.com",
		Plan:              account.PlanPro,
		ExternalProfileID: testutil.StrPtr("prof_1"),
	})
	for i := 0; i < 3; i++ {
		req := asAccount(newJSONRequest(t, http.MethodPost, "/api/v1/posts", dto.CreatePostRequest{
			Content:   fmt.Sprintf("post %d", i),
			Platforms: []string{"x"},
		}), a.ID)
		rr := httptest.NewRecorder()
		f.handler.Create(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	req := asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/posts?limit=2&offset=0", nil), a.ID)
	rr := httptest.NewRecorder()
	f.handler.History(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var page dto.PostHistoryResponse
	decodeEnvelope(t, rr, &page)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, "post 2", page.Posts[0].Content)
}

func TestPostHandler_Usage(t *testing.T) {
	f := newPostFixture()
	a := f.accounts.Seed(&account.Account{Email: "a@example.com", Plan: account.PlanPro, PostsUsed: 125})

	rr := httptest.NewRecorder()
	f.handler.Usage(rr, asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil), a.ID))

	require.Equal(t, http.StatusOK, rr.Code)
	var stats account.UsageStats
	decodeEnvelope(t, rr, &stats)
	assert.Equal(t, 125, stats.PostsUsed)
	assert.Equal(t, 500, stats.PostsLimit)
	assert.Equal(t, 25, stats.PercentageUsed)
	assert.Equal(t, int64(0), stats.PostsLast30Days)
}
