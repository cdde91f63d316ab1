package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search stages as reported by the resolver
const (
	StageBaseline  = "baseline"
	StageRanked    = "ranked"
	StageSubstring = "substring"
	StageFallback  = "fallback"
)

var (
	searchResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventease",
		Name:      "search_resolutions_total",
		Help:      "Search requests by the stage that produced the result.",
	}, []string{"stage"})

	registrationOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventease",
		Name:      "registration_operations_total",
		Help:      "Register and unregister operations by outcome.",
	}, []string{"operation", "outcome"})

	staleResponses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventease",
		Name:      "client_stale_search_responses_total",
		Help:      "Search responses discarded because a newer query was issued.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventease",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func SearchResolved(stage string) {
	searchResolutions.WithLabelValues(stage).Inc()
}

// RegistrationOperation records outcome "ok", "in_progress", "invalid" or "error"
func RegistrationOperation(operation, outcome string) {
	registrationOps.WithLabelValues(operation, outcome).Inc()
}

func StaleResponseDiscarded() {
	staleResponses.Inc()
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
