package router

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/handler"
	"alima/internal/adapter/api/middleware"
	"alima/internal/infrastructure/ratelimit"
)

// SetupUploadRouter mounts the media relay. It stays outside /v1 and is
// throttled per IP instead of authenticated.
func SetupUploadRouter(e *echo.Echo, limiter *ratelimit.RateLimiter) {
	uploadHandler := handler.GetUploadHandler()

	e.POST("/api/upload", uploadHandler.Upload, middleware.RateLimit(limiter, ratelimit.ActionUpload))
}
