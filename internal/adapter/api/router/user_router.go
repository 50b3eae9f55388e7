package router

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/handler"
	"alima/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("/me", userHandler.GetMe)
	users.PATCH("/me", userHandler.UpdateMe)
	users.GET("/:id", userHandler.GetPublicProfile)
}
