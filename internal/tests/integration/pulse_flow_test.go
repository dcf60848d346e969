package integration

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulsesocial/pulse/internal/api/handlers"
	"github.com/pulsesocial/pulse/internal/api/middleware"
	"github.com/pulsesocial/pulse/internal/api/router"
	"github.com/pulsesocial/pulse/internal/config"
	"github.com/pulsesocial/pulse/internal/pkg/validator"
	"github.com/pulsesocial/pulse/internal/providers"
	"github.com/pulsesocial/pulse/internal/repository/postgres"
	"github.com/pulsesocial/pulse/internal/services"
	"github.com/pulsesocial/pulse/internal/testutil"
	"github.com/pulsesocial/pulse/pkg/client"
)

const (
	webhookSecret = "whsec_integration"
	cronSecret    = "cron-integration"
)

type stack struct {
	server   *httptest.Server
	provider *testutil.MockSocialProvider
	accounts *postgres.AccountRepository
}

// fakeStripe answers subscription lookups the way the payment API does.
func fakeStripe(t *testing.T) *stripe.Backends {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/subscriptions/sub_int":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"sub_int","object":"subscription","customer":"cus_int","status":"active",
				"current_period_end":1900000000,
				"items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":{"id":"price_pro","object":"price"}}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such resource"}}`))
		}
	}))
	t.Cleanup(srv.Close)

	return &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(srv.URL),
			MaxNetworkRetries: stripe.Int64(0),
		}),
	}
}

func setupStack(t *testing.T) *stack {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.CleanupDB(db) })

	log := testutil.NewTestLogger()
	cfg := &config.Config{
		Server: config.ServerConfig{
			FrontendURL:    "http://localhost:3000",
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
		Auth: config.AuthConfig{
			JWTSecret:          "integration-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
			BCryptCost:         bcrypt.MinCost,
			TrialPeriod:        7 * 24 * time.Hour,
		},
		Cron: config.CronConfig{Secret: cronSecret},
	}

	accounts := postgres.NewAccountRepository(db)
	posts := postgres.NewPostLogRepository(db)
	provider := testutil.NewMockSocialProvider()
	gateway := providers.NewStripeGateway("sk_test", webhookSecret, fakeStripe(t), log)

	accountService := services.NewAccountService(accounts, posts, cfg.Auth.TrialPeriod, cfg.Auth.BCryptCost, log)
	postService := services.NewPostService(accounts, posts, provider, log)
	billingService := services.NewBillingService(accounts, gateway, services.BillingConfig{
		AppURL:      "http://localhost:3000",
		PlanPrices:  map[string]string{"essentials": "price_ess", "pro": "price_pro", "business": "price_biz"},
		AddonPrices: map[string]string{"reddit": "price_reddit"},
	}, log)
	maintenanceService := services.NewMaintenanceService(accounts, log)

	val := validator.New()
	h := &router.Handlers{
		Health:      handlers.NewHealthHandler(db, provider, log),
		Auth:        handlers.NewAuthHandler(accountService, cfg, log, val),
		Post:        handlers.NewPostHandler(postService, accountService, log, val),
		Billing:     handlers.NewBillingHandler(billingService, log, val),
		Webhook:     handlers.NewWebhookHandler(gateway, billingService, log),
		Maintenance: handlers.NewMaintenanceHandler(maintenanceService, nil, log),
		Profile:     handlers.NewProfileHandler(services.NewProfileService(accounts, provider, log), log, val),
		Analytics:   handlers.NewAnalyticsHandler(services.NewAnalyticsService(accounts, provider, log), log),
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	srv := httptest.NewServer(router.New(cfg, log, limiter, h))
	t.Cleanup(srv.Close)

	return &stack{server: srv, provider: provider, accounts: accounts}
}

func (s *stack) client() *client.Client {
	return client.NewClient(client.Config{BaseURL: s.server.URL, CronSecret: cronSecret})
}

func (s *stack) deliverWebhook(t *testing.T, eventType, object string) *http.Response {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"id":"evt_%d","object":"event","type":%q,"api_version":%q,"data":{"object":%s}}`,
		time.Now().UnixNano(), eventType, stripe.APIVersion, object))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})

	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/webhooks/stripe", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Stripe-Signature", signed.Header)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPulse_SubscriptionLifecycle(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()
	c := s.client()

	reg, err := c.Register(ctx, client.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotNil(t, reg.Account)
	assert.Equal(t, "free", reg.Account.Plan)
	assert.Equal(t, 10, reg.Account.PostsLimit)
	accountID := reg.Account.ID

	// Posting needs a profile first
	_, err = c.Posts().Create(ctx, client.CreatePostRequest{Content: "hi", Platforms: []string{"x"}})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusPreconditionFailed, apiErr.StatusCode)

	_, err = c.Profiles().Create(ctx, "Ada's brand")
	require.NoError(t, err)

	// Reddit needs its add-on
	_, err = c.Posts().Create(ctx, client.CreatePostRequest{Content: "hi", Platforms: []string{"reddit"}})
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsForbidden())
	assert.Equal(t, 0, s.provider.CallCount("createPost"))

	res, err := c.Posts().Create(ctx, client.CreatePostRequest{Content: "hello", Platforms: []string{"x", "bluesky"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "bluesky"}, res.Log.Platforms)

	usage, err := c.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, usage.PostsUsed)

	// Checkout completes for Pro with the Reddit add-on
	resp := s.deliverWebhook(t, "checkout.session.completed", fmt.Sprintf(
		`{"id":"cs_1","object":"checkout.session","customer":"cus_int","subscription":"sub_int","metadata":{"accountId":%q,"plan":"pro","addons":"[\"reddit\"]"}}`,
		strconv.FormatInt(accountID, 10)))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sub, err := c.Billing().Subscription(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pro", sub.Plan)
	assert.Equal(t, []string{"reddit"}, sub.Addons)
	require.NotNil(t, sub.SubscriptionID)
	assert.Equal(t, "sub_int", *sub.SubscriptionID)

	_, err = c.Posts().Create(ctx, client.CreatePostRequest{Content: "now on reddit", Platforms: []string{"reddit"}})
	require.NoError(t, err)

	history, err := c.Posts().List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), history.Total)
	assert.Equal(t, "now on reddit", history.Posts[0].Content)

	// Monthly reset zeroes subscriber usage
	reset, err := c.Cron().MonthlyReset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset.UsersUpdated)
	usage, err = c.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.PostsUsed)
	assert.Equal(t, int64(2), usage.PostsLast30Days, "activity survives the reset")

	// Cancellation drops back to free
	resp = s.deliverWebhook(t, "customer.subscription.deleted",
		`{"id":"sub_int","object":"subscription","customer":"cus_int"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	acct, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "free", acct.Plan)
	assert.Empty(t, acct.Addons)
	assert.False(t, acct.IsLocked)
}

func TestPulse_WebhookRejectsBadSignature(t *testing.T) {
	s := setupStack(t)

	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPulse_CronRequiresSecret(t *testing.T) {
	s := setupStack(t)

	unauth := client.NewClient(client.Config{BaseURL: s.server.URL, CronSecret: "wrong"})
	_, err := unauth.Cron().TrialExpiry(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())

	res, err := s.client().Cron().TrialExpiry(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(0), res.AccountsLocked)

	jobs, err := s.client().Cron().Jobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestPulse_HealthAndAuthRequired(t *testing.T) {
	s := setupStack(t)
	c := s.client()

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)

	ready, err := c.Ready(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "connected", ready.Provider)

	_, err = c.Usage(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())

	catalogue, err := c.Billing().Plans(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalogue.Plans, 3)
}
