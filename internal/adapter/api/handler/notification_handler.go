package handler

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/middleware"
	"alima/internal/usecase"
	"alima/pkg/response"
	"alima/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
	feedUseCase         *usecase.FeedUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase, feedUseCase *usecase.FeedUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		feedUseCase:         feedUseCase,
	}
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, err := h.notificationUseCase.List(c.Request().Context(), middleware.CurrentUserID(c), pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	changed, err := h.notificationUseCase.MarkRead(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"updated": changed})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	updated, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"updated": updated})
}

func (h *NotificationHandler) UnreadCounts(c echo.Context) error {
	counts, err := h.feedUseCase.UnreadCounts(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, counts)
}
