package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "The total number of ops HTTP requests",
			ConstLabels: prometheus.Labels{"service": serviceName},
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "The ops HTTP request latencies in seconds",
			ConstLabels: prometheus.Labels{"service": serviceName},
			Buckets:     []float64{.001, .005, .01, .05, .1, .5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	metricsHandler http.Handler = promhttp.Handler()
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}

// LogMetricsInitialization lists the exported series at debug level.
func (s *Server) LogMetricsInitialization() {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(map[string]interface{}{
		"http_requests_total":                         "ops requests by method, endpoint, status",
		"http_request_duration_seconds":               "ops request latency by method, endpoint",
		"subscriber_store_operations_total":           "store calls by operation, status",
		"subscriber_store_operation_duration_seconds": "store latency by operation",
		"metrics_endpoint":                            "/metrics",
	}).Debug("Available Prometheus metrics")
}

func (s *Server) metricsEndpoint(c echo.Context) error {
	metricsHandler.ServeHTTP(c.Response(), c.Request())
	return nil
}
