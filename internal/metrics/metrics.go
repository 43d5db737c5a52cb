package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"postforlife/internal/reaction"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postforlife_http_requests_total",
		Help: "The total number of handled HTTP requests",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postforlife_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	reactionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postforlife_reactions_applied_total",
		Help: "The total number of applied reactions",
	}, []string{"target", "change"})
)

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveReaction counts a reaction applied to target ("post" or "comment").
func ObserveReaction(target string, change reaction.Change) {
	reactionsApplied.WithLabelValues(target, change.String()).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
