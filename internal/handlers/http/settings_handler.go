package http

import (
	"net/http"
	"time"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	apperrors "livecast/pkg/errors"
	"livecast/pkg/utils"

	"github.com/gin-gonic/gin"
)

const tokenVisibleChars = 4

type SettingsHandler struct {
	settingsService ports.SettingsService
}

func NewSettingsHandler(settingsService ports.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)
		api.GET("/settings/credentials", h.GetCredentials)
		api.PUT("/settings/credentials", h.UpdateCredentials)
		api.GET("/settings/qualities", h.ListQualities)
	}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
	})
}

// UpdateSettings merges the provided fields over the current settings,
// so a client can change one knob without resending the rest.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req struct {
		Quality       *string `json:"quality"`
		Bitrate       *string `json:"bitrate"`
		AutoQueue     *bool   `json:"auto_queue"`
		Notifications *bool   `json:"notifications"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError(err.Error()))
		return
	}

	current, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	merged := *current
	if req.Quality != nil {
		merged.Quality = *req.Quality
	}
	if req.Bitrate != nil {
		merged.Bitrate = *req.Bitrate
	}
	if req.AutoQueue != nil {
		merged.AutoQueue = *req.AutoQueue
	}
	if req.Notifications != nil {
		merged.Notifications = *req.Notifications
	}

	updated, err := h.settingsService.UpdateSettings(c.Request.Context(), &merged)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": updated,
	})
}

// credentialsView is what clients see: the token never leaves the
// server unmasked.
type credentialsView struct {
	PageID      string    `json:"page_id"`
	AccessToken string    `json:"access_token"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func maskCredentials(creds *domain.Credentials) credentialsView {
	return credentialsView{
		PageID:      creds.PageID,
		AccessToken: utils.MaskSensitive(creds.AccessToken, tokenVisibleChars),
		UpdatedAt:   creds.UpdatedAt,
	}
}

func (h *SettingsHandler) GetCredentials(c *gin.Context) {
	creds, err := h.settingsService.GetCredentials(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credentials": maskCredentials(creds),
	})
}

func (h *SettingsHandler) UpdateCredentials(c *gin.Context) {
	var req struct {
		PageID      string `json:"page_id" binding:"required"`
		AccessToken string `json:"access_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError(err.Error()))
		return
	}

	updated, err := h.settingsService.UpdateCredentials(c.Request.Context(), &domain.Credentials{
		PageID:      req.PageID,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credentials": maskCredentials(updated),
	})
}

func (h *SettingsHandler) ListQualities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"qualities": domain.Profiles(),
	})
}
