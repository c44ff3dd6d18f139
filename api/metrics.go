package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adwheel_requests_total",
		Help: "API requests by declared type and response status.",
	}, []string{"type", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adwheel_request_duration_seconds",
		Help:    "Request handling duration by declared type.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
)

func observe(reqType string, status int, start time.Time) {
	if reqType == "" {
		reqType = "unknown"
	}
	requestsTotal.WithLabelValues(reqType, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(reqType).Observe(time.Since(start).Seconds())
}
