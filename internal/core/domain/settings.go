package domain

import (
	"time"
)

// StreamSettings drive the encoder parameters and queue behaviour of
// every new session.
type StreamSettings struct {
	Quality       string    `json:"quality"`
	Bitrate       string    `json:"bitrate"`
	AutoQueue     bool      `json:"auto_queue"`
	Notifications bool      `json:"notifications"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Credentials identify the remote platform page the stream is pushed to.
type Credentials struct {
	PageID      string    `json:"page_id"`
	AccessToken string    `json:"access_token"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EncodingProfile maps a named quality to concrete encoder dimensions.
type EncodingProfile struct {
	Quality string `json:"quality"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}
