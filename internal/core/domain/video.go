package domain

import (
	"time"
)

type VideoID string

type VideoStatus string

const (
	VideoStatusUploaded   VideoStatus = "uploaded"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusReady      VideoStatus = "ready"
	VideoStatusError      VideoStatus = "error"
)

type Video struct {
	ID              VideoID     `json:"id"`
	OriginalName    string      `json:"original_name"`
	StoredName      string      `json:"stored_name"`
	SizeBytes       int64       `json:"size_bytes"`
	DurationSeconds *int64      `json:"duration_seconds"`
	Status          VideoStatus `json:"status"`
	UploadedAt      time.Time   `json:"uploaded_at"`
}

// MediaInfo is the result of probing a media file on disk.
type MediaInfo struct {
	DurationSeconds int64 `json:"duration_seconds"`
	SizeBytes       int64 `json:"size_bytes"`
}
