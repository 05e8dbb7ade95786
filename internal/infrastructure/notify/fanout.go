package notify

import (
	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// Fanout delivers every event to each sink in order. It composes the
// local hub with the redis relay when multi-instance mode is enabled.
type Fanout struct {
	sinks []ports.Notifier
}

func NewFanout(sinks ...ports.Notifier) *Fanout {
	return &Fanout{sinks: sinks}
}

// Notify implements ports.Notifier.
func (f *Fanout) Notify(event domain.Event) {
	for _, s := range f.sinks {
		s.Notify(event)
	}
}
