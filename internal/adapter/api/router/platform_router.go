package router

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/handler"
	"alima/internal/adapter/api/middleware"
)

func SetupPlatformRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	platformHandler := handler.GetPlatformHandler()

	e.GET("/v1/announcements", platformHandler.ListAnnouncements, authMiddleware.Optional)

	applications := e.Group("/v1/applications")
	applications.Use(authMiddleware.Authenticate)

	applications.POST("", platformHandler.Apply)
	applications.GET("/mine", platformHandler.MyApplications)

	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(middleware.AdminOnly)

	admin.GET("/applications", platformHandler.ListApplications)
	admin.POST("/applications/:id/review", platformHandler.ReviewApplication)
	admin.POST("/announcements", platformHandler.Announce)
}
