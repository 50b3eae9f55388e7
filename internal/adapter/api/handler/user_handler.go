package handler

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/middleware"
	"alima/internal/domain/entity"
	"alima/internal/usecase"
	"alima/pkg/errors"
	"alima/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := middleware.CurrentSession(c).Profile(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req entity.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := middleware.CurrentSession(c).UpdateProfile(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) GetPublicProfile(c echo.Context) error {
	profile, err := h.userUseCase.GetPublicProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, profile)
}
