package http

import (
	"net/http"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	apperrors "livecast/pkg/errors"

	"github.com/gin-gonic/gin"
)

type QueueHandler struct {
	queueService ports.QueueService
}

func NewQueueHandler(queueService ports.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

func (h *QueueHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/queue", h.Enqueue)
		api.GET("/queue", h.ListQueue)
		api.GET("/queue/head", h.GetHead)
		api.DELETE("/queue/:id", h.RemoveEntry)
		api.PUT("/queue/:id/position", h.MoveEntry)
		api.DELETE("/queue", h.ClearQueue)
	}
}

func (h *QueueHandler) Enqueue(c *gin.Context) {
	var req struct {
		VideoID string `json:"video_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError(err.Error()))
		return
	}

	entry, err := h.queueService.Enqueue(c.Request.Context(), domain.VideoID(req.VideoID))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry": entry,
	})
}

func (h *QueueHandler) ListQueue(c *gin.Context) {
	queue, err := h.queueService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queue": queue,
	})
}

// GetHead returns the next entry to play without consuming it. An
// empty queue reads as a null entry, not an error.
func (h *QueueHandler) GetHead(c *gin.Context) {
	entry, err := h.queueService.Head(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry": entry,
	})
}

func (h *QueueHandler) RemoveEntry(c *gin.Context) {
	entryID := domain.EntryID(c.Param("id"))

	if err := h.queueService.Remove(c.Request.Context(), entryID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "removed",
	})
}

func (h *QueueHandler) MoveEntry(c *gin.Context) {
	entryID := domain.EntryID(c.Param("id"))

	var req struct {
		Position *int `json:"position" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError(err.Error()))
		return
	}

	queue, err := h.queueService.Reorder(c.Request.Context(), entryID, *req.Position)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queue": queue,
	})
}

func (h *QueueHandler) ClearQueue(c *gin.Context) {
	if err := h.queueService.Clear(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "cleared",
	})
}
