package domain

import "time"

type EventType string

const (
	EventStreamStarted  EventType = "stream_started"
	EventStreamStopped  EventType = "stream_stopped"
	EventQueueUpdated   EventType = "queue_updated"
	EventMetricsUpdated EventType = "metrics_updated"
)

// Event is the envelope broadcast to connected status clients.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

type StreamStartedPayload struct {
	Session *Session `json:"session"`
	Video   *Video   `json:"video"`
}

type StreamStoppedPayload struct {
	SessionID SessionID `json:"session_id"`
	Reason    string    `json:"reason,omitempty"`
}

type QueueUpdatedPayload struct {
	Queue []*QueueEntry `json:"queue"`
}

type MetricsUpdatedPayload struct {
	Metrics *LiveMetrics `json:"metrics"`
}

func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
