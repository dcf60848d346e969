package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/pulsesocial/pulse/internal/auth"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// AccountIDKey is the context key for the authenticated account ID
	AccountIDKey ContextKey = "accountID"
	// AccountEmailKey is the context key for the authenticated email
	AccountEmailKey ContextKey = "email"
)

// AccessTokenCookie carries the access token for browser clients
const AccessTokenCookie = "accessToken"

// bearerToken reads the token from the Authorization header, falling back
// to the access token cookie.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// AuthMiddleware returns a middleware that validates JWT access tokens
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
				return
			}

			claims, err := auth.ParseClaims(tokenStr, jwtSecret)
			if err != nil || claims.Kind != auth.KindAccess {
				utils.WriteError(w, errors.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), AccountIDKey, claims.AccountID)
			ctx = context.WithValue(ctx, AccountEmailKey, claims.Email)

			AddLogField(r, "account_id", claims.AccountID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SharedSecret guards machine endpoints with a bearer shared secret. The
// comparison is constant time. An empty secret rejects every request.
func SharedSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAccountID extracts the account ID from the request context
func GetAccountID(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(AccountIDKey).(int64)
	return id, ok
}

// GetAccountEmail extracts the account email from the request context
func GetAccountEmail(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(AccountEmailKey).(string)
	return email, ok
}
