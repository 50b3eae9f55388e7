package middleware

import (
	"github.com/labstack/echo/v4"

	"alima/pkg/errors"
	"alima/pkg/response"
)

// AdminOnly must run after Authenticate.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := CurrentSession(c)
		if sess == nil {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		user, err := sess.Profile(c.Request().Context())
		if err != nil {
			return response.Error(c, err)
		}
		if !user.IsAdmin() {
			return response.Error(c, errors.Forbidden("Admin privileges required", nil))
		}

		return next(c)
	}
}

// ProviderOnly must run after Authenticate.
func ProviderOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := CurrentSession(c)
		if sess == nil {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		user, err := sess.Profile(c.Request().Context())
		if err != nil {
			return response.Error(c, err)
		}
		if !user.IsProvider() {
			return response.Error(c, errors.Forbidden("Provider account required", nil))
		}

		return next(c)
	}
}
