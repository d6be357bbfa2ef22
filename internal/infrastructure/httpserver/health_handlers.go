package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	serviceName        = "breach-monitor"
	healthCheckTimeout = 2 * time.Second
)

type healthResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Service      string            `json:"service"`
	Dependencies map[string]string `json:"dependencies"`
}

// healthCheck probes every dependency concurrently and answers 503 if any fails.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		deps = make(map[string]string, len(s.healthCheckers))
	)
	for _, hc := range s.healthCheckers {
		hc := hc
		if hc == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			state := "healthy"
			if err := hc.Check(ctx); err != nil {
				state = "unhealthy"
				if s.logger != nil {
					s.logger.WithField("dependency", hc.Name()).WithError(err).Warn("health check failed")
				}
			}
			mu.Lock()
			deps[hc.Name()] = state
			mu.Unlock()
		}()
	}
	wg.Wait()

	resp := healthResponse{
		Status:       "healthy",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Service:      serviceName,
		Dependencies: deps,
	}
	for _, state := range deps {
		if state != "healthy" {
			resp.Status = "degraded"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
