package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/post"
	"github.com/pulsesocial/pulse/internal/domain/social"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/testutil"
)

func newTestLateClient(t *testing.T, handler http.HandlerFunc) *LateClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewLateClient(LateConfig{BaseURL: srv.URL, APIKey: "late_key", Timeout: 2 * time.Second}, testutil.NewTestLogger())
}

func TestLateClient_CreatePost(t *testing.T) {
	scheduled := time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC)
	var got latePostPayload

	client := newTestLateClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/posts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer late_key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"post_9","profileId":"prof_1","status":"scheduled","platforms":["x","instagram"]}`))
	})

	res, err := client.CreatePost(context.Background(), social.PostRequest{
		ProfileID:            "prof_1",
		Content:              "hello",
		Platforms:            []account.Platform{account.PlatformInstagram, account.PlatformX},
		ScheduledAt:          &scheduled,
		MediaItems:           post.MediaItems([]string{"https://cdn.test/a.MOV"}),
		PlatformSpecificData: json.RawMessage(`{"x":{"thread":true}}`),
	})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	if res.ID != "post_9" || len(res.Platforms) != 2 {
		t.Errorf("CreatePost() = %+v", res)
	}
	if got.ScheduledAt != "2030-01-02T15:04:05Z" {
		t.Errorf("scheduledAt = %q", got.ScheduledAt)
	}
	if len(got.MediaItems) != 1 || got.MediaItems[0].Type != post.MediaVideo {
		t.Errorf("mediaItems = %+v", got.MediaItems)
	}
	if string(got.PlatformSpecificData) != `{"x":{"thread":true}}` {
		t.Errorf("platformSpecificData = %s", got.PlatformSpecificData)
	}
	if got.QueuedFromProfile != "" {
		t.Errorf("queuedFromProfile = %q, want empty", got.QueuedFromProfile)
	}
}

func TestLateClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server error", http.StatusInternalServerError, "boom", "status 500 - boom"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, "status 401"},
		{"missing id", http.StatusOK, `{"status":"scheduled"}`, "no post id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestLateClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.CreatePost(context.Background(), social.PostRequest{ProfileID: "p", Content: "c"})
			if !errors.HasCode(err, errors.ErrCodeUpstream) {
				t.Fatalf("CreatePost() error = %v, want UPSTREAM_ERROR", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
			if strings.Contains(err.Error(), "late_key") {
				t.Error("error leaks the API key")
			}
		})
	}
}

func TestLateClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewLateClient(LateConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, testutil.NewTestLogger())
	if _, err := client.GetProfile(context.Background(), "prof_1"); !errors.HasCode(err, errors.ErrCodeUpstream) {
		t.Errorf("GetProfile() error = %v, want UPSTREAM_ERROR", err)
	}
}

func TestLateClient_GetAccountsAndQueue(t *testing.T) {
	client := newTestLateClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("profileId"); got != "prof 1" {
			t.Errorf("profileId = %q", got)
		}
		switch r.URL.Path {
		case "/accounts":
			w.Write([]byte(`[{"id":"a1","platform":"x","username":"ada","isConnected":true},{"id":"a2","platform":"tiktok","isConnected":false}]`))
		case "/queue/next-slot":
			w.Write([]byte(`{"profileId":"prof 1","nextSlot":"2030-01-01T09:00:00Z","timezone":"UTC"}`))
		default:
			http.NotFound(w, r)
		}
	})

	accounts, err := client.GetAccounts(context.Background(), "prof 1")
	if err != nil {
		t.Fatalf("GetAccounts() error = %v", err)
	}
	if len(accounts) != 2 || !accounts[0].Connected || accounts[1].Connected {
		t.Errorf("GetAccounts() = %+v", accounts)
	}

	slot, err := client.GetNextQueueSlot(context.Background(), "prof 1")
	if err != nil {
		t.Fatalf("GetNextQueueSlot() error = %v", err)
	}
	if !slot.NextSlot.Equal(time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("NextSlot = %v", slot.NextSlot)
	}
}

func TestLateClient_GetAnalyticsQuery(t *testing.T) {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	client := newTestLateClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("platform") != "x" || q.Get("startDate") != "2030-01-01T00:00:00Z" || q.Has("endDate") {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`[{"profileId":"p","platform":"x","metrics":{"impressions":10,"engagement":2}}]`))
	})

	entries, err := client.GetAnalytics(context.Background(), "p", social.AnalyticsQuery{Platform: "x", Start: &start})
	if err != nil {
		t.Fatalf("GetAnalytics() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Metrics.Impressions != 10 {
		t.Errorf("GetAnalytics() = %+v", entries)
	}
}

func TestLateClient_GetUsageStats(t *testing.T) {
	client := newTestLateClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/usage-stats" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer late_key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"postsCreated":12,"postsScheduled":3,"postsPublished":9,"accountsConnected":4,"profilesActive":1}`))
	})

	stats, err := client.GetUsageStats(context.Background())
	if err != nil {
		t.Fatalf("GetUsageStats() error = %v", err)
	}
	want := social.UsageStats{PostsCreated: 12, PostsScheduled: 3, PostsPublished: 9, AccountsConnected: 4, ProfilesActive: 1}
	if *stats != want {
		t.Errorf("GetUsageStats() = %+v, want %+v", *stats, want)
	}

	rejected := newTestLateClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	})
	if _, err := rejected.GetUsageStats(context.Background()); !errors.HasCode(err, errors.ErrCodeUpstream) {
		t.Errorf("GetUsageStats(bad key) error = %v, want UPSTREAM_ERROR", err)
	}
}
