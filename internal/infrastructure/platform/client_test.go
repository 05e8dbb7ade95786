package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"livecast/internal/core/domain"
)

func testCreds() *domain.Credentials {
	return &domain.Credentials{PageID: "123456789", AccessToken: "EAAtesttoken"}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, Timeout: time.Second}, zaptest.NewLogger(t).Sugar())
}

func TestClient_CreateLiveTarget(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/123456789/live_videos", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "LIVE_NOW", r.PostForm.Get("status"))
		assert.Equal(t, "Friday show", r.PostForm.Get("title"))
		assert.Equal(t, "weekly", r.PostForm.Get("description"))
		assert.Equal(t, "EAAtesttoken", r.PostForm.Get("access_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "target-1", "stream_url": "rtmp://live.example.com/rtmp/key", "secure_stream_url": "rtmps://live.example.com/rtmp/key"}`))
	})

	target, err := client.CreateLiveTarget(context.Background(), testCreds(), "Friday show", "weekly")
	require.NoError(t, err)
	assert.Equal(t, "target-1", target.ID)
	assert.Equal(t, "rtmps://live.example.com/rtmp/key", target.IngestURL)
}

func TestClient_CreateLiveTargetFallsBackToPlainURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "target-1", "stream_url": "rtmp://live.example.com/rtmp/key"}`))
	})

	target, err := client.CreateLiveTarget(context.Background(), testCreds(), "t", "")
	require.NoError(t, err)
	assert.Equal(t, "rtmp://live.example.com/rtmp/key", target.IngestURL)
}

func TestClient_CreateLiveTargetBadIngest(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing ingest url", `{"id": "target-1"}`},
		{"non-rtmp scheme", `{"id": "target-1", "stream_url": "https://live.example.com/key"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})

			_, err := client.CreateLiveTarget(context.Background(), testCreds(), "t", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unusable ingest url")
		})
	}
}

func TestClient_CreateLiveTargetAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Invalid OAuth access token", "type": "OAuthException", "code": 190}}`))
	})

	_, err := client.CreateLiveTarget(context.Background(), testCreds(), "t", "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, 190, apiErr.Code)
	assert.Equal(t, "OAuthException", apiErr.Type)
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestClient_EndLiveTarget(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/target-1", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "true", r.PostForm.Get("end_live_video"))
		assert.Equal(t, "EAAtesttoken", r.PostForm.Get("access_token"))

		w.Write([]byte(`{"success": true}`))
	})

	ended, err := client.EndLiveTarget(context.Background(), testCreds(), "target-1")
	require.NoError(t, err)
	assert.True(t, ended)
}

func TestClient_TargetMetrics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/target-1", r.URL.Path)

		query := r.URL.Query()
		assert.Contains(t, query.Get("fields"), "live_views")
		assert.Equal(t, "EAAtesttoken", query.Get("access_token"))

		w.Write([]byte(`{"live_views": 42, "reactions": {"summary": {"total_count": 7}}, "comments": {"summary": {"total_count": 3}}}`))
	})

	metrics, err := client.TargetMetrics(context.Background(), testCreds(), "target-1")
	require.NoError(t, err)
	assert.Equal(t, 42, metrics.Viewers)
	assert.Equal(t, 7, metrics.Reactions)
	assert.Equal(t, 3, metrics.Comments)
	assert.False(t, metrics.SampledAt.IsZero())
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	})

	_, err := client.EndLiveTarget(context.Background(), testCreds(), "target-1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "platform api error (status 500)", apiErr.Error())
}
