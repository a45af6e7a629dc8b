package observability

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_http_requests_total",
			Help: "Total number of HTTP requests handled.",
		},
		[]string{"path", "method", "code"},
	)
	newsletterRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_newsletter_runs_total",
			Help: "Newsletter dispatch runs by terminal state.",
		},
		[]string{"state"},
	)
	sideEffectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_side_effects_total",
			Help: "Outbound side effects by target, classification and status.",
		},
		[]string{"target", "effect", "status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, newsletterRunsTotal, sideEffectsTotal)
}

// RecordHTTPRequest counts a handled request. Unmatched routes are grouped under "unmatched".
func RecordHTTPRequest(path, method string, status int) {
	if path == "" {
		path = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
}

// RecordNewsletterRun counts a dispatch run by its terminal state.
func RecordNewsletterRun(state string) {
	newsletterRunsTotal.WithLabelValues(state).Inc()
}

// RecordSideEffect counts one outbound call.
func RecordSideEffect(target, effect, status string) {
	sideEffectsTotal.WithLabelValues(target, effect, status).Inc()
}

// MetricsHandler exposes the default prometheus registry.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
