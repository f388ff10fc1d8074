package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicerelay",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voicerelay",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicerelay",
			Subsystem: "upload",
			Name:      "total",
			Help:      "Audio uploads by outcome",
		},
		[]string{"status"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voicerelay",
			Subsystem: "upload",
			Name:      "bytes_total",
			Help:      "Total audio bytes stored from uploads",
		},
	)

	// outcome: replied, empty, http_error, failed
	ForwardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicerelay",
			Subsystem: "forward",
			Name:      "total",
			Help:      "Webhook forwards by outcome",
		},
		[]string{"outcome"},
	)

	ForwardDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "voicerelay",
			Subsystem: "forward",
			Name:      "duration_seconds",
			Help:      "Webhook forward duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	ForwardsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "voicerelay",
			Subsystem: "forward",
			Name:      "in_flight",
			Help:      "Background tasks currently running",
		},
	)

	SynthesisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicerelay",
			Subsystem: "tts",
			Name:      "total",
			Help:      "Speech synthesis attempts by status",
		},
		[]string{"status"},
	)

	// source: api, upload, forward, webhook
	MessagesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicerelay",
			Subsystem: "store",
			Name:      "messages_created_total",
			Help:      "Messages inserted by creation path and role",
		},
		[]string{"source", "role"},
	)
)

func RecordRequest(method, route, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(durationSec)
}

func RecordUpload(status string, bytes int64) {
	UploadsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		UploadBytesTotal.Add(float64(bytes))
	}
}

func RecordForward(outcome string, durationSec float64) {
	ForwardsTotal.WithLabelValues(outcome).Inc()
	ForwardDuration.Observe(durationSec)
}

func RecordSynthesis(status string) {
	SynthesisTotal.WithLabelValues(status).Inc()
}

func RecordMessageCreated(source, role string) {
	MessagesCreatedTotal.WithLabelValues(source, role).Inc()
}
