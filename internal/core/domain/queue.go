package domain

import (
	"time"
)

type EntryID string

// QueueEntry references a video waiting to be streamed. Position defines
// the total play order; Seq breaks ties by insertion order.
type QueueEntry struct {
	ID        EntryID    `json:"id"`
	VideoID   VideoID    `json:"video_id"`
	Position  int        `json:"position"`
	Seq       int64      `json:"seq"`
	SessionID *SessionID `json:"session_id"`
	AddedAt   time.Time  `json:"added_at"`
}
