package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OffersPostedTotal    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "greenride", Name: "offers_posted_total", Help: "Total ride offers posted"})
	MatchesTotal         = promauto.NewCounter(prometheus.CounterOpts{Namespace: "greenride", Name: "matches_total", Help: "Total driver-rider matches made"})
	AcceptConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "greenride", Name: "accept_conflicts_total", Help: "Accept attempts lost to another driver"})
	DriversOnline        = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "greenride", Name: "drivers_online", Help: "Number of online drivers"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "greenride", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "greenride",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
