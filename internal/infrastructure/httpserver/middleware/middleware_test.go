package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/breachwatch/monitor/internal/infrastructure/httpserver/middleware"
)

func newMetrics() (*prometheus.CounterVec, *prometheus.HistogramVec) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests_total"}, []string{"method", "endpoint", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_request_duration_seconds"}, []string{"method", "endpoint"})
	return total, duration
}

func TestMetricsMiddleware_CountsByRouteAndStatus(t *testing.T) {
	total, duration := newMetrics()
	m := middleware.NewMetricsMiddleware(total, duration)

	e := echo.New()
	e.Use(m.CollectHTTPMetrics())
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusServiceUnavailable) })

	for i := 0; i < 2; i++ {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	}

	require.Equal(t, float64(2), testutil.ToFloat64(total.WithLabelValues("GET", "/health", "503")))
	require.Equal(t, 1, testutil.CollectAndCount(duration))
}

func TestLoggingMiddleware_WarnsOnError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	m := middleware.NewLoggingMiddleware(logger)

	e := echo.New()
	handler := m.RequestLogging()(func(c echo.Context) error { return errors.New("boom") })
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/metrics", nil), httptest.NewRecorder())

	require.Error(t, handler(c))
	require.Len(t, hook.Entries, 1)
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	require.Equal(t, "GET", hook.LastEntry().Data["method"])
}

func TestLoggingMiddleware_DebugOnSuccess(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	m := middleware.NewLoggingMiddleware(logger)

	e := echo.New()
	handler := m.RequestLogging()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), httptest.NewRecorder())

	require.NoError(t, handler(c))
	require.Len(t, hook.Entries, 1)
	require.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

func TestLoggingMiddleware_NilLogger(t *testing.T) {
	m := middleware.NewLoggingMiddleware(nil)
	e := echo.New()
	handler := m.RequestLogging()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.NoError(t, handler(c))
}
