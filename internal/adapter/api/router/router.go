package router

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/handler"
	"alima/internal/adapter/api/middleware"
	"alima/internal/infrastructure/ratelimit"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter, wsHandler *handler.WebSocketHandler) {
	SetupAuthRouter(e, authMiddleware, limiter)
	SetupUserRouter(e, authMiddleware)
	SetupServiceRouter(e, authMiddleware)
	SetupConversationRouter(e, authMiddleware)
	SetupNotificationRouter(e, authMiddleware)
	SetupBookingRouter(e, authMiddleware)
	SetupUploadRouter(e, limiter)
	SetupPlatformRouter(e, authMiddleware)
	SetupWebSocketRouter(e, authMiddleware, wsHandler)
	SetupHealthRouter(e)
}
