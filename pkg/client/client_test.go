package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, CronSecret: "s3cret"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_LoginStoresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var req LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ada@example.com", req.Email)
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"access_token":  "access-1",
					"refresh_token": "refresh-1",
					"expires_in":    900,
					"account":       map[string]interface{}{"id": 7, "email": "ada@example.com", "plan": "free"},
				},
			})
		case "/api/v1/usage":
			assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    map[string]interface{}{"posts_used": 4, "posts_limit": 10, "percentage_used": 40},
			})
		default:
			http.NotFound(w, r)
		}
	})

	resp, err := c.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.Account.ID)
	assert.Equal(t, "access-1", c.GetToken())

	usage, err := c.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, usage.PostsUsed)
	assert.Equal(t, 40, usage.PercentageUsed)
}

func TestClient_EnvelopeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"success": false,
			"error":   map[string]interface{}{"code": "FORBIDDEN", "message": "Post limit reached (10/10)"},
		})
	})

	_, err := c.Posts().Create(context.Background(), CreatePostRequest{Content: "hi", Platforms: []string{"x"}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsForbidden())
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Contains(t, apiErr.Message, "Post limit reached")
}

func TestClient_PostHistoryQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"posts": []interface{}{}, "total": 12, "limit": 5, "offset": 10},
		})
	})

	history, err := c.Posts().List(context.Background(), &ListOptions{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(12), history.Total)
	assert.Empty(t, history.Posts)
}

func TestCronService(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer s3cret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		switch r.URL.Path {
		case "/api/cron/monthly-reset":
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "usersUpdated": 3})
		case "/api/cron/trial-expiry":
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error", "message": "db down"})
		case "/api/cron/jobs":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    []map[string]string{{"name": "monthly-reset", "schedule": "0 0 0 1 * *"}},
			})
		}
	})

	res, err := c.Cron().MonthlyReset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.UsersUpdated)

	_, err = c.Cron().TrialExpiry(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, "Internal server error: db down", apiErr.Message)

	jobs, err := c.Cron().Jobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "monthly-reset", jobs[0].Name)

	c.cronSecret = "wrong"
	_, err = c.Cron().MonthlyReset(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, "Unauthorized", apiErr.Message)

	c.cronSecret = ""
	_, err = c.Cron().MonthlyReset(context.Background())
	assert.Error(t, err)
}
