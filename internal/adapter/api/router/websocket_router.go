package router

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/handler"
	"alima/internal/adapter/api/middleware"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, wsHandler *handler.WebSocketHandler) {
	e.GET("/v1/ws", wsHandler.HandleWebSocket, authMiddleware.AuthenticateWebSocket)
}
