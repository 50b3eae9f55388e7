package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/middleware"
	"alima/internal/domain/entity"
	"alima/internal/usecase"
	"alima/pkg/errors"
	"alima/pkg/response"
)

type AuthHandler struct {
	authUseCase   *usecase.AuthUseCase
	secureCookies bool
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authUseCase:   authUseCase,
		secureCookies: secureCookies,
	}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=60"`
	Phone       string `json:"phone" validate:"omitempty,e164"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type authResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *entity.User `json:"user"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
	})
	if err != nil {
		return response.Error(c, err)
	}

	h.setSessionCookie(c, result)
	return response.Created(c, toAuthResponse(result))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SignIn(c.Request().Context(), usecase.SignInInput{
		Email:    req.Email,
		Password: req.Password,
		Remember: req.Remember,
	})
	if err != nil {
		return response.Error(c, err)
	}

	h.setSessionCookie(c, result)
	return response.Success(c, toAuthResponse(result))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authUseCase.SignOut(c.Request().Context(), middleware.CurrentUserID(c)); err != nil {
		return response.Error(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	return response.Success(c, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.authUseCase.SendPasswordReset(c.Request().Context(), req.Email); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Password reset email sent"})
}

// setSessionCookie writes the provider session cookie. A zero CookieMaxAge
// yields a browser-session cookie.
func (h *AuthHandler) setSessionCookie(c echo.Context, result *usecase.AuthResult) {
	if result.SessionCookie == "" {
		return
	}

	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.SessionCookie,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if result.CookieMaxAge > 0 {
		cookie.MaxAge = int(result.CookieMaxAge.Seconds())
	}
	c.SetCookie(cookie)
}

func toAuthResponse(result *usecase.AuthResult) authResponse {
	return authResponse{
		Token:        result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    int64(result.ExpiresIn.Seconds()),
		User:         result.User,
	}
}
