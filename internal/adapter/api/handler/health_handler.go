package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
	info   map[string]string
}

var healthHandler *HealthHandler

// NewHealthHandler takes named readiness probes and static info reported
// by the liveness endpoint (store driver, event mode).
func NewHealthHandler(checks map[string]HealthCheck, info map[string]string) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		info:   info,
	}
}

func SetupHealthHandler(checks map[string]HealthCheck, info map[string]string) {
	healthHandler = NewHealthHandler(checks, info)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	}
	for k, v := range h.info {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// CheckReady runs every probe with a short deadline. Any failure answers 503.
func (h *HealthHandler) CheckReady(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	return c.JSON(status, results)
}
