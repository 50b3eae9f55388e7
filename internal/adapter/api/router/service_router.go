package router

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/handler"
	"alima/internal/adapter/api/middleware"
)

func SetupServiceRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	serviceHandler := handler.GetServiceHandler()
	bookingHandler := handler.GetBookingHandler()

	// Browsing is public
	e.GET("/v1/services", serviceHandler.ListServices)
	e.GET("/v1/services/:id", serviceHandler.GetService)
	e.GET("/v1/services/:id/reviews", bookingHandler.ListServiceReviews)

	provider := e.Group("/v1/services")
	provider.Use(authMiddleware.Authenticate)
	provider.Use(middleware.ProviderOnly)

	provider.POST("", serviceHandler.CreateService)
	provider.GET("/mine", serviceHandler.ListMyServices)
	provider.PATCH("/:id", serviceHandler.UpdateService)
	provider.DELETE("/:id", serviceHandler.DeleteService)
}
