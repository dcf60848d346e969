package handlers

import (
	"net/http"

	"github.com/pulsesocial/pulse/internal/api/dto"
	"github.com/pulsesocial/pulse/internal/domain/social"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
	"github.com/pulsesocial/pulse/internal/pkg/validator"
)

// ProfileHandler handles onboarding with the posting provider
type ProfileHandler struct {
	profiles  social.ProfileService
	logger    *logger.Logger
	validator *validator.Validator
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles social.ProfileService, log *logger.Logger, val *validator.Validator) *ProfileHandler {
	return &ProfileHandler{
		profiles:  profiles,
		logger:    log,
		validator: val,
	}
}

// Create creates the account's posting profile
// @Summary Create posting profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param request body dto.CreateProfileRequest true "Profile"
// @Success 201 {object} social.Profile
// @Failure 409 {object} utils.ErrorResponse "Profile already exists"
// @Security BearerAuth
// @Router /profiles [post]
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	var req dto.CreateProfileRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	profile, err := h.profiles.CreateProfile(r.Context(), accountID, req.Name)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, profile)
}

// Accounts lists connected social accounts
// @Summary Connected accounts
// @Tags Profiles
// @Produce json
// @Success 200 {array} social.ConnectedAccount
// @Security BearerAuth
// @Router /profiles/accounts [get]
func (h *ProfileHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	accounts, err := h.profiles.GetConnectedAccounts(r.Context(), accountID)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, accounts)
}

// Invites creates one connection invite per platform
// @Summary Platform invites
// @Tags Profiles
// @Produce json
// @Success 200 {array} social.Invite
// @Failure 412 {object} utils.ErrorResponse "No posting profile"
// @Security BearerAuth
// @Router /profiles/invites [post]
func (h *ProfileHandler) Invites(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	invites, err := h.profiles.CreatePlatformInvites(r.Context(), accountID)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, invites)
}

// Status reports which platforms are connected
// @Summary Connection status
// @Tags Profiles
// @Produce json
// @Success 200 {array} social.ConnectionStatus
// @Security BearerAuth
// @Router /profiles/status [get]
func (h *ProfileHandler) Status(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	status, err := h.profiles.CheckConnectionStatus(r.Context(), accountID)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, status)
}
