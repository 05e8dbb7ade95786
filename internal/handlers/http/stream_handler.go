package http

import (
	"net/http"
	"strconv"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	apperrors "livecast/pkg/errors"

	"github.com/gin-gonic/gin"
)

const defaultSessionsLimit = 20

type StreamHandler struct {
	streamService  ports.StreamService
	metricsService ports.MetricsService
}

func NewStreamHandler(
	streamService ports.StreamService,
	metricsService ports.MetricsService,
) *StreamHandler {
	return &StreamHandler{
		streamService:  streamService,
		metricsService: metricsService,
	}
}

func (h *StreamHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/stream/start", h.StartStream)
		api.POST("/stream/stop", h.StopStream)
		api.GET("/stream/status", h.GetStatus)
		api.GET("/stream/metrics", h.GetLiveMetrics)
		api.GET("/stream/sessions", h.ListSessions)
		api.GET("/stream/sessions/:id/metrics", h.GetSessionMetrics)
	}
}

func (h *StreamHandler) StartStream(c *gin.Context) {
	var req struct {
		VideoID     string `json:"video_id" binding:"required"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError(err.Error()))
		return
	}

	session, err := h.streamService.Start(c.Request.Context(), ports.StartStreamRequest{
		VideoID:     domain.VideoID(req.VideoID),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": session,
	})
}

func (h *StreamHandler) StopStream(c *gin.Context) {
	session, err := h.streamService.Stop(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
	})
}

func (h *StreamHandler) GetStatus(c *gin.Context) {
	status, err := h.streamService.Status(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetLiveMetrics returns the latest sample for the running session.
func (h *StreamHandler) GetLiveMetrics(c *gin.Context) {
	status, err := h.streamService.Status(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !status.IsStreaming || status.Session == nil {
		_ = c.Error(apperrors.NewNotFoundError("active session"))
		return
	}

	metrics, err := h.metricsService.Latest(c.Request.Context(), status.Session.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics": metrics,
	})
}

func (h *StreamHandler) ListSessions(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"), defaultSessionsLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	sessions, err := h.streamService.Sessions(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
	})
}

func (h *StreamHandler) GetSessionMetrics(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	limit, err := parseLimit(c.Query("limit"), 0)
	if err != nil {
		_ = c.Error(err)
		return
	}

	metrics, err := h.metricsService.History(c.Request.Context(), sessionID, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"metrics":    metrics,
	})
}

// parseLimit reads an optional positive limit query parameter.
func parseLimit(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, apperrors.NewValidationError("limit must be a non-negative integer")
	}
	return limit, nil
}
