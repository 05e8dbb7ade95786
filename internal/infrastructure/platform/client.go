package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"livecast/internal/core/domain"
	"livecast/pkg/validation"
)

const (
	defaultBaseURL   = "https://graph.facebook.com/v19.0"
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 1 << 20
)

// Config holds the settings for the Graph API client.
type Config struct {
	// BaseURL is the root URL for API requests, without a trailing
	// slash. Defaults to the public Graph API.
	BaseURL string

	// Timeout bounds each request when no HTTPClient is supplied.
	Timeout time.Duration

	// HTTPClient is used for all requests. Defaults to a client with
	// the configured timeout.
	HTTPClient *http.Client
}

// Client talks to the social platform's Graph API. Credentials are
// passed per call, so one client serves whatever page the operator has
// configured at the time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewClient(cfg Config, logger *zap.SugaredLogger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// CreateLiveTarget registers a new live video on the page and returns
// the RTMP ingest endpoint the encoder must push to.
func (c *Client) CreateLiveTarget(ctx context.Context, creds *domain.Credentials, title, description string) (*domain.LiveTarget, error) {
	params := url.Values{}
	params.Set("status", "LIVE_NOW")
	if title != "" {
		params.Set("title", title)
	}
	if description != "" {
		params.Set("description", description)
	}
	params.Set("access_token", creds.AccessToken)

	var resp struct {
		ID              string `json:"id"`
		StreamURL       string `json:"stream_url"`
		SecureStreamURL string `json:"secure_stream_url"`
	}
	if err := c.post(ctx, "/"+creds.PageID+"/live_videos", params, &resp); err != nil {
		return nil, err
	}

	ingest := resp.SecureStreamURL
	if ingest == "" {
		ingest = resp.StreamURL
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("live video response missing id")
	}
	if err := validation.ValidateIngestURL(ingest); err != nil {
		return nil, fmt.Errorf("live video response has unusable ingest url: %w", err)
	}

	c.logger.Infow("created live video", "target_id", resp.ID)
	return &domain.LiveTarget{ID: resp.ID, IngestURL: ingest}, nil
}

// EndLiveTarget finishes the broadcast on the platform side. Reports
// whether the platform acknowledged the end.
func (c *Client) EndLiveTarget(ctx context.Context, creds *domain.Credentials, targetID string) (bool, error) {
	params := url.Values{}
	params.Set("end_live_video", "true")
	params.Set("access_token", creds.AccessToken)

	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.post(ctx, "/"+targetID, params, &resp); err != nil {
		return false, err
	}

	return resp.Success, nil
}

// TargetMetrics reads viewer and engagement counters for a broadcast.
func (c *Client) TargetMetrics(ctx context.Context, creds *domain.Credentials, targetID string) (*domain.LiveMetrics, error) {
	params := url.Values{}
	params.Set("fields", "live_views,reactions.summary(total_count),comments.summary(total_count)")
	params.Set("access_token", creds.AccessToken)

	var resp struct {
		LiveViews int `json:"live_views"`
		Reactions struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"reactions"`
		Comments struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"comments"`
	}
	if err := c.get(ctx, "/"+targetID, params, &resp); err != nil {
		return nil, err
	}

	return &domain.LiveMetrics{
		Viewers:   resp.LiveViews,
		Reactions: resp.Reactions.Summary.TotalCount,
		Comments:  resp.Comments.Summary.TotalCount,
		SampledAt: time.Now(),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, out)
}

func (c *Client) post(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, params, out)
}

// do executes one request. Query parameters carry the access token, so
// URLs never appear in logs.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path

	var req *http.Request
	var err error
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, method, endpoint+"?"+params.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("failed to build platform request: %w", err)
	}

	c.logger.Debugw("platform request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read platform response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode platform response: %w", err)
		}
	}
	return nil
}

// APIError is a structured error returned by the platform.
type APIError struct {
	Status  int
	Code    int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform api error (status %d)", e.Status)
	}
	return fmt.Sprintf("platform api error (status %d, code %d, %s): %s", e.Status, e.Code, e.Type, e.Message)
}

func parseAPIError(status int, body []byte) error {
	var wire struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &wire); err == nil {
		apiErr.Code = wire.Error.Code
		apiErr.Type = wire.Error.Type
		apiErr.Message = wire.Error.Message
	}
	return apiErr
}
