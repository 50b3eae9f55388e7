package router

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/handler"
	"alima/internal/adapter/api/middleware"
	"alima/internal/infrastructure/ratelimit"
)

// SetupAuthRouter initializes auth routes
func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	authHandler := handler.GetAuthHandler()

	public := e.Group("/v1/auth")
	public.Use(middleware.RateLimit(limiter, ratelimit.ActionAuth))

	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)
	public.POST("/password-reset", authHandler.ResetPassword)

	protected := e.Group("/v1/auth")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("/logout", authHandler.Logout)
}
