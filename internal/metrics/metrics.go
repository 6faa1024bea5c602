// Package metrics exposes Prometheus instrumentation for the send path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Send counts send attempts and tracks their latency, labelled by channel
// and by outcome ("ok" / "error").
type Send struct {
	total    *prometheus.CounterVec
	duration *prometheus.SummaryVec
}

// NewSend registers the send metrics on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid double registration.
func NewSend(reg prometheus.Registerer) *Send {
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wxpush_send_total",
			Help: "Send attempts by channel and result.",
		},
		[]string{"channel", "result"},
	)
	duration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "wxpush_send_duration_seconds",
			Help:       "Send duration in seconds, token fetch included.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			MaxAge:     5 * time.Minute,
		},
		[]string{"channel"},
	)
	reg.MustRegister(total, duration)
	return &Send{total: total, duration: duration}
}

// Observe records one finished send attempt.
func (s *Send) Observe(channel string, errcode int, d time.Duration) {
	result := "ok"
	if errcode != 0 {
		result = "error"
	}
	s.total.WithLabelValues(channel, result).Inc()
	s.duration.WithLabelValues(channel).Observe(d.Seconds())
}
