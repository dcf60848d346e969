package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsesocial/pulse/internal/api/middleware"
	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/services"
	"github.com/pulsesocial/pulse/internal/testutil"
)

func TestMaintenanceHandler(t *testing.T) {
	accounts := testutil.NewMockAccountRepository()
	log := testutil.NewTestLogger()
	service := services.NewMaintenanceService(accounts, log)
	h := NewMaintenanceHandler(service, nil, log)

	accounts.Seed(&account.Account{
		Email:                 "a@example.com",
		Plan:                  account.PlanPro,
		PostsUsed:             77,
		BillingSubscriptionID: testutil.StrPtr("sub_1"),
	})

	guard := middleware.SharedSecret("cron-secret")

	t.Run("monthly reset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cron/monthly-reset", nil)
		req.Header.Set("Authorization", "Bearer cron-secret")
		rr := httptest.NewRecorder()
		guard(http.HandlerFunc(h.MonthlyReset)).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(1), body["usersUpdated"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("trial expiry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cron/trial-expiry", nil)
		req.Header.Set("Authorization", "Bearer cron-secret")
		rr := httptest.NewRecorder()
		guard(http.HandlerFunc(h.TrialExpiry)).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, float64(0), body["accountsLocked"])
	})

	t.Run("wrong secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cron/monthly-reset", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		guard(http.HandlerFunc(h.MonthlyReset)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rr.Body.String())
	})

	t.Run("job failure", func(t *testing.T) {
		accounts.UpdateError = fmt.Errorf("db down")
		defer func() { accounts.UpdateError = nil }()

		rr := httptest.NewRecorder()
		h.MonthlyReset(rr, httptest.NewRequest(http.MethodGet, "/api/cron/monthly-reset", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"Internal server error","message":"db down"}`, rr.Body.String())
	})

	t.Run("jobs without scheduler", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Jobs(rr, httptest.NewRequest(http.MethodGet, "/api/cron/jobs", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true,"data":[]}`, rr.Body.String())
	})
}
