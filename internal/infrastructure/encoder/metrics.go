package encoder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	launchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livecast_encoder_launch_total",
		Help: "Encoder launch attempts by result",
	}, []string{"result"})

	exitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livecast_encoder_exit_total",
		Help: "Encoder process exits by kind",
	}, []string{"kind"})

	stopEscalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livecast_encoder_stop_escalation_total",
		Help: "Stops that needed a kill after the graceful signal was ignored",
	})

	probesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livecast_probe_total",
		Help: "Media probe attempts by result",
	}, []string{"result"})
)
