package domain

import "errors"

var (
	ErrVideoNotFound       = errors.New("video not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrEntryNotFound       = errors.New("queue entry not found")
	ErrSettingsNotFound    = errors.New("settings not found")
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrAlreadyStreaming    = errors.New("stream already active")
	ErrNoActiveStream      = errors.New("no active stream")
	ErrVideoInUse          = errors.New("video is used by the active session")
	ErrInvalidTransition   = errors.New("invalid session phase transition")
	ErrInputNotFound       = errors.New("input file not found")
	ErrEncoderRunning      = errors.New("encoder process already running")
)
