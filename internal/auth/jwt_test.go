package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestMintAndParse(t *testing.T) {
	pair, err := MintTokens(42, "ada@example.com", testSecret, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	if pair.ExpiresIn != 60 {
		t.Errorf("ExpiresIn = %d, want 60", pair.ExpiresIn)
	}

	tests := []struct {
		name     string
		token    string
		wantKind string
	}{
		{"access token", pair.AccessToken, KindAccess},
		{"refresh token", pair.RefreshToken, KindRefresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseClaims(tt.token, testSecret)
			if err != nil {
				t.Fatalf("ParseClaims() error = %v", err)
			}
			if claims.AccountID != 42 || claims.Email != "ada@example.com" || claims.Kind != tt.wantKind {
				t.Errorf("claims = %+v", claims)
			}
		})
	}
}

func TestParseClaims_Rejects(t *testing.T) {
	pair, _ := MintTokens(1, "a@example.com", testSecret, time.Minute, time.Hour)
	expired, _ := MintTokens(1, "a@example.com", testSecret, -time.Minute, time.Hour)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	foreignStr, _ := foreign.SignedString([]byte(testSecret))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		AccountID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	noneStr, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", pair.AccessToken, "other"},
		{"expired", expired.AccessToken, testSecret},
		{"wrong issuer", foreignStr, testSecret},
		{"unsigned", noneStr, testSecret},
		{"garbage", "not-a-token", testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseClaims(tt.token, tt.secret); err == nil {
				t.Error("ParseClaims() error = nil, want error")
			}
		})
	}
}
