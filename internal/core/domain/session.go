package domain

import (
	"time"
)

type SessionID string

// SessionStatus is the persisted status of a broadcast session.
type SessionStatus string

const (
	SessionStatusIdle      SessionStatus = "idle"
	SessionStatusStreaming SessionStatus = "streaming"
	SessionStatusStopped   SessionStatus = "stopped"
	SessionStatusError     SessionStatus = "error"
)

// SessionPhase is the in-memory lifecycle phase of the active session.
// Sessions move idle -> starting -> live -> stopping -> ended, with
// error reachable from starting, live and stopping. A live session may
// also end directly when the encoder finishes the input cleanly.
type SessionPhase string

const (
	PhaseIdle     SessionPhase = "idle"
	PhaseStarting SessionPhase = "starting"
	PhaseLive     SessionPhase = "live"
	PhaseStopping SessionPhase = "stopping"
	PhaseEnded    SessionPhase = "ended"
	PhaseError    SessionPhase = "error"
)

var phaseTransitions = map[SessionPhase][]SessionPhase{
	PhaseIdle:     {PhaseStarting},
	PhaseStarting: {PhaseLive, PhaseError},
	PhaseLive:     {PhaseStopping, PhaseEnded, PhaseError},
	PhaseStopping: {PhaseEnded, PhaseError},
	PhaseEnded:    {},
	PhaseError:    {},
}

// CanTransition reports whether a session phase change is legal.
func CanTransition(from, to SessionPhase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Session struct {
	ID           SessionID     `json:"id"`
	Status       SessionStatus `json:"status"`
	VideoID      VideoID       `json:"video_id"`
	LiveTargetID string        `json:"live_target_id"`
	IngestURL    string        `json:"ingest_url"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Quality      string        `json:"quality"`
	Bitrate      string        `json:"bitrate"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      *time.Time    `json:"ended_at"`
	LastError    string        `json:"last_error,omitempty"`
}
