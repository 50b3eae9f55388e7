package middleware

import (
	"github.com/labstack/echo/v4"

	"alima/internal/infrastructure/ratelimit"
	"alima/pkg/errors"
	"alima/pkg/logger"
	"alima/pkg/response"
)

// RateLimit throttles requests per client IP using the budget of action.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if allowed, wait := limiter.Allow(ip, action); !allowed {
				logger.Warn("Rate limit: %s blocked on %s for %v", ip, action, wait)
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded", wait))
			}
			return next(c)
		}
	}
}
