package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QuizEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_events_recorded_total",
			Help: "Quiz events folded into the aggregates",
		},
		[]string{"category", "correct"},
	)

	SyncBroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_broadcasts_total",
			Help: "Change notifications dispatched to subscribers",
		},
		[]string{"type", "source"},
	)

	SubscriberFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_subscriber_failures_total",
			Help: "Subscriber callbacks that panicked during delivery",
		},
	)

	SimulationBatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "simulation_batches_total",
			Help: "Simulation batches applied through the pipeline",
		},
	)

	StoreReadRecoveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_read_recoveries_total",
			Help: "Document reads that fell back to a default document",
		},
		[]string{"doc"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(QuizEventsTotal)
	prometheus.MustRegister(SyncBroadcastsTotal)
	prometheus.MustRegister(SubscriberFailures)
	prometheus.MustRegister(SimulationBatches)
	prometheus.MustRegister(StoreReadRecoveries)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
