package handlers

import (
	"net/http"

	"github.com/pulsesocial/pulse/internal/api/dto"
	"github.com/pulsesocial/pulse/internal/api/middleware"
	"github.com/pulsesocial/pulse/internal/auth"
	"github.com/pulsesocial/pulse/internal/config"
	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
	"github.com/pulsesocial/pulse/internal/pkg/validator"
)

const refreshTokenCookie = "refreshToken"

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	accounts  account.Service
	config    *config.Config
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	accounts account.Service,
	cfg *config.Config,
	log *logger.Logger,
	val *validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		config:    cfg,
		logger:    log,
		validator: val,
	}
}

// Register handles account registration
// @Summary Register an account
// @Description Create a free account with a trial window
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 409 {object} utils.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	acct, err := h.accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	h.issueSession(w, http.StatusCreated, acct)
}

// Login handles credential login
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} utils.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	acct, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"email": req.Email,
		}).Warn("Authentication failed")
		utils.WriteAnyError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"account_id": acct.ID,
	}).Info("Account logged in")

	h.issueSession(w, http.StatusOK, acct)
}

// RefreshToken exchanges a refresh token for a new pair
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} utils.ErrorResponse "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && r.ContentLength == 0 {
		req.RefreshToken = cookie.Value
	} else if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	claims, err := auth.ParseClaims(req.RefreshToken, h.config.Auth.JWTSecret)
	if err != nil || claims.Kind != auth.KindRefresh {
		utils.WriteError(w, errors.Unauthorized("Invalid refresh token"))
		return
	}

	acct, err := h.accounts.GetByID(r.Context(), claims.AccountID)
	if err != nil {
		utils.WriteError(w, errors.Unauthorized("Invalid refresh token"))
		return
	}

	h.issueSession(w, http.StatusOK, acct)
}

// Logout clears the session cookies
// @Summary Log out
// @Tags Auth
// @Success 200 {object} utils.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			HttpOnly: true,
			Secure:   h.config.IsProduction(),
			SameSite: http.SameSiteStrictMode,
			Path:     "/",
			MaxAge:   -1,
		})
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Logged out successfully", nil)
}

// Session returns the signed-in account
// @Summary Current session
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.SessionDTO
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /auth/session [get]
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	acct, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewSessionDTO(acct))
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, status int, acct *account.Account) {
	tokens, err := auth.MintTokens(
		acct.ID,
		acct.Email,
		h.config.Auth.JWTSecret,
		h.config.Auth.AccessTokenExpiry,
		h.config.Auth.RefreshTokenExpiry,
	)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to generate tokens")
		utils.WriteError(w, errors.Internal("Failed to generate tokens", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		HttpOnly: true,
		Secure:   h.config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(h.config.Auth.AccessTokenExpiry.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    tokens.RefreshToken,
		HttpOnly: true,
		Secure:   h.config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
		Path:     "/api/v1/auth",
		MaxAge:   int(h.config.Auth.RefreshTokenExpiry.Seconds()),
	})

	utils.WriteSuccess(w, status, dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		Account:      dto.NewSessionDTO(acct),
	})
}
