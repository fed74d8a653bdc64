package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PhaseTransitions counts committed phase lifecycle transitions.
	PhaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_phase_transitions_total",
		Help: "Total number of committed phase transitions",
	}, []string{"transition"})

	// WorkflowRejections counts workflow operations refused before any write.
	WorkflowRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_workflow_rejections_total",
		Help: "Total number of rejected workflow operations by operation and error kind",
	}, []string{"operation", "kind"})

	// EventPublish counts workflow events handed to the message broker.
	EventPublish = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_event_publish_total",
		Help: "Total number of published workflow events",
	}, []string{"status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"method", "path", "status"})
)

func RecordTransition(transition string) {
	PhaseTransitions.WithLabelValues(transition).Inc()
}

func RecordRejection(operation, kind string) {
	WorkflowRejections.WithLabelValues(operation, kind).Inc()
}

func RecordEventPublish(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	EventPublish.WithLabelValues(status).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// HTTPMetrics records latency labelled with the route template, not the raw path.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(begin))
	}
}

func RegisterMetricsHandler(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
