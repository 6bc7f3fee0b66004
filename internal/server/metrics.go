package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctcbeam_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ctcbeam_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Decode metrics
	decodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctcbeam_decode_requests_total",
			Help: "Total number of decode requests",
		},
		[]string{"method", "status"}, // method: greedy, beam_search
	)

	decodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ctcbeam_decode_duration_seconds",
			Help:    "Decode duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method"},
	)

	decodeTimesteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ctcbeam_decode_timesteps",
			Help:    "Number of timesteps per decode request",
			Buckets: []float64{1, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
	)

	decodeTextLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ctcbeam_decode_text_length",
			Help:    "Length of decoded label strings",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	decodeHypotheses = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ctcbeam_decode_hypotheses",
			Help:    "Number of merged hypotheses returned by beam search",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctcbeam_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ctcbeam_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctcbeam_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
