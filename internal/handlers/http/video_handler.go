package http

import (
	"fmt"
	"net/http"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	apperrors "livecast/pkg/errors"

	"github.com/gin-gonic/gin"
)

type VideoHandler struct {
	videoService   ports.VideoService
	maxUploadBytes int64
}

func NewVideoHandler(videoService ports.VideoService, maxUploadBytes int64) *VideoHandler {
	return &VideoHandler{
		videoService:   videoService,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *VideoHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/videos", h.UploadVideo)
		api.GET("/videos", h.ListVideos)
		api.GET("/videos/:id", h.GetVideo)
		api.DELETE("/videos/:id", h.DeleteVideo)
	}
}

func (h *VideoHandler) UploadVideo(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		_ = c.Error(apperrors.NewValidationError(
			fmt.Sprintf("file exceeds the upload limit of %d bytes", h.maxUploadBytes)))
		return
	}

	video, err := h.videoService.Upload(c.Request.Context(), header.Filename, header.Size, file)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"video": video,
	})
}

func (h *VideoHandler) ListVideos(c *gin.Context) {
	videos, err := h.videoService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": videos,
	})
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	videoID := domain.VideoID(c.Param("id"))

	video, err := h.videoService.Get(c.Request.Context(), videoID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"video": video,
	})
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID := domain.VideoID(c.Param("id"))

	if err := h.videoService.Delete(c.Request.Context(), videoID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "deleted",
	})
}
