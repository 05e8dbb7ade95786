package http

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"livecast/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performUpload(t *testing.T, router http.Handler, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/videos", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestVideoHandler_Upload(t *testing.T) {
	service := &fakeVideoService{
		video: &domain.Video{ID: "video_up", OriginalName: "movie.mp4", Status: domain.VideoStatusReady},
	}
	router := newTestRouter(t)
	NewVideoHandler(service, 1<<20).SetupRoutes(router)

	w := performUpload(t, router, "file", "movie.mp4", []byte("mp4 bytes"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "movie.mp4", service.uploadedName)
	assert.Equal(t, int64(len("mp4 bytes")), service.uploadedSize)
	assert.Equal(t, []byte("mp4 bytes"), service.uploadedData)

	body := decodeBody(t, w.Body.Bytes())
	video := body["video"].(map[string]interface{})
	assert.Equal(t, "video_up", video["id"])
}

func TestVideoHandler_UploadRequiresFileField(t *testing.T) {
	router := newTestRouter(t)
	NewVideoHandler(&fakeVideoService{}, 1<<20).SetupRoutes(router)

	w := performUpload(t, router, "document", "movie.mp4", []byte("mp4 bytes"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, w.Body.Bytes())["error"])
}

func TestVideoHandler_UploadRejectsOversizedFile(t *testing.T) {
	service := &fakeVideoService{}
	router := newTestRouter(t)
	NewVideoHandler(service, 8).SetupRoutes(router)

	w := performUpload(t, router, "file", "movie.mp4", []byte("way more than eight bytes"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, service.uploadedName, "service must not be called for oversized uploads")
}

func TestVideoHandler_GetNotFound(t *testing.T) {
	service := &fakeVideoService{
		err: fmt.Errorf("failed to load video: %w", domain.ErrVideoNotFound),
	}
	router := newTestRouter(t)
	NewVideoHandler(service, 1<<20).SetupRoutes(router)

	w := perform(router, http.MethodGet, "/api/v1/videos/video_missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, w.Body.Bytes())["error"])
}

func TestVideoHandler_ListVideos(t *testing.T) {
	service := &fakeVideoService{
		videos: []*domain.Video{{ID: "video_a"}, {ID: "video_b"}},
	}
	router := newTestRouter(t)
	NewVideoHandler(service, 1<<20).SetupRoutes(router)

	w := perform(router, http.MethodGet, "/api/v1/videos", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w.Body.Bytes())["videos"], 2)
}

func TestVideoHandler_DeleteLiveVideoRefused(t *testing.T) {
	service := &fakeVideoService{err: domain.ErrVideoInUse}
	router := newTestRouter(t)
	NewVideoHandler(service, 1<<20).SetupRoutes(router)

	w := perform(router, http.MethodDelete, "/api/v1/videos/video_live", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domain.VideoID("video_live"), service.deletedID)
}

func TestVideoHandler_Delete(t *testing.T) {
	service := &fakeVideoService{}
	router := newTestRouter(t)
	NewVideoHandler(service, 1<<20).SetupRoutes(router)

	w := perform(router, http.MethodDelete, "/api/v1/videos/video_gone", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deleted", decodeBody(t, w.Body.Bytes())["status"])
}
