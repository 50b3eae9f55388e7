package router

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/handler"
	"alima/internal/infrastructure/metrics"
)

func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.GetHealthHandler()
	e.GET("/health", healthHandler.CheckHealth)
	e.GET("/ready", healthHandler.CheckReady)
	e.GET("/metrics", metrics.Handler())
}
