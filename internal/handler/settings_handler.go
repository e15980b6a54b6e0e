package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dojokai/dojo-api/internal/service"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
	"github.com/dojokai/dojo-api/pkg/response"
)

// SettingsHandler exposes the admin configuration panel endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetBilling godoc
// @Summary Get billing configuration
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/billing [get]
func (h *SettingsHandler) GetBilling(c *gin.Context) {
	settings, err := h.settings.GetBilling(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpdateBilling godoc
// @Summary Update billing configuration
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdateBillingRequest true "Billing payload"
// @Success 200 {object} response.Envelope
// @Router /settings/billing [put]
func (h *SettingsHandler) UpdateBilling(c *gin.Context) {
	var req service.UpdateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	settings, err := h.settings.UpdateBilling(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// GetProfile godoc
// @Summary Get dojo profile
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/profile [get]
func (h *SettingsHandler) GetProfile(c *gin.Context) {
	profile, err := h.settings.GetProfile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UpdateProfile godoc
// @Summary Update dojo profile
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /settings/profile [put]
func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.settings.UpdateProfile(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// GetTheme godoc
// @Summary Get theme settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/theme [get]
func (h *SettingsHandler) GetTheme(c *gin.Context) {
	theme, err := h.settings.GetTheme(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, theme, nil)
}

// UpdateTheme godoc
// @Summary Update theme settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdateThemeRequest true "Theme payload"
// @Success 200 {object} response.Envelope
// @Router /settings/theme [put]
func (h *SettingsHandler) UpdateTheme(c *gin.Context) {
	var req service.UpdateThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	theme, err := h.settings.UpdateTheme(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, theme, nil)
}
