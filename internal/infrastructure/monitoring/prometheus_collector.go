package monitoring

import (
	"time"

	"livecast/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// sessionPhases enumerates every phase the state gauge reports, so a
// phase change always resets the others back to zero.
var sessionPhases = []domain.SessionPhase{
	domain.PhaseIdle,
	domain.PhaseStarting,
	domain.PhaseLive,
	domain.PhaseStopping,
	domain.PhaseEnded,
	domain.PhaseError,
}

type PrometheusCollector struct {
	reg prometheus.Registerer

	// Gauges
	sessionState *prometheus.GaugeVec
	queueLength  prometheus.Gauge

	// Counters
	eventsPublished *prometheus.CounterVec

	// Histograms
	samplerDuration prometheus.Histogram
}

// NewPrometheusCollector registers the application-level metric set on
// reg (the default registerer when nil). Encoder process metrics live
// in the encoder package next to the code that records them.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusCollector{
		reg: reg,

		sessionState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "livecast_session_state",
			Help: "Current broadcast session phase (1 for the active phase, 0 otherwise)",
		}, []string{"phase"}),

		queueLength: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livecast_queue_length",
			Help: "Number of entries in the playback queue",
		}),

		eventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecast_events_published_total",
			Help: "Total number of status events published to clients",
		}, []string{"type"}),

		samplerDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "livecast_sampler_duration_seconds",
			Help:    "Duration of live metrics sampling round-trips",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// RecordSessionPhase marks phase as the active one and clears the rest.
func (p *PrometheusCollector) RecordSessionPhase(phase domain.SessionPhase) {
	for _, candidate := range sessionPhases {
		value := 0.0
		if candidate == phase {
			value = 1.0
		}
		p.sessionState.WithLabelValues(string(candidate)).Set(value)
	}
}

func (p *PrometheusCollector) RecordQueueLength(length int) {
	p.queueLength.Set(float64(length))
}

func (p *PrometheusCollector) RecordEventPublished(eventType domain.EventType) {
	p.eventsPublished.WithLabelValues(string(eventType)).Inc()
}

func (p *PrometheusCollector) ObserveSamplerDuration(duration time.Duration) {
	p.samplerDuration.Observe(duration.Seconds())
}

// RegisterClientCountFunc exposes the status hub's connection count as
// a gauge sampled at scrape time.
func (p *PrometheusCollector) RegisterClientCountFunc(count func() int) {
	promauto.With(p.reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "livecast_ws_clients",
		Help: "Number of connected status WebSocket clients",
	}, func() float64 {
		return float64(count())
	})
}
