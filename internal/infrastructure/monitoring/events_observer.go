package monitoring

import (
	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// EventObserver counts every published status event and keeps the
// session and queue gauges in step with the event stream, then hands
// the event to the wrapped notifier. Compose it in front of the fanout
// so instrumentation sees exactly what clients see.
type EventObserver struct {
	next      ports.Notifier
	collector *PrometheusCollector
}

var _ ports.Notifier = (*EventObserver)(nil)

func NewEventObserver(next ports.Notifier, collector *PrometheusCollector) *EventObserver {
	return &EventObserver{next: next, collector: collector}
}

func (o *EventObserver) Notify(event domain.Event) {
	o.collector.RecordEventPublished(event.Type)

	switch event.Type {
	case domain.EventStreamStarted:
		o.collector.RecordSessionPhase(domain.PhaseLive)
	case domain.EventStreamStopped:
		o.collector.RecordSessionPhase(domain.PhaseIdle)
	case domain.EventQueueUpdated:
		if payload, ok := event.Payload.(domain.QueueUpdatedPayload); ok {
			o.collector.RecordQueueLength(len(payload.Queue))
		}
	}

	o.next.Notify(event)
}
