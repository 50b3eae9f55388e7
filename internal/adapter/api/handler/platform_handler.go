package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/middleware"
	"alima/internal/usecase"
	"alima/pkg/errors"
	"alima/pkg/response"
	"alima/pkg/utils"
)

type PlatformHandler struct {
	platformUseCase *usecase.PlatformUseCase
}

func NewPlatformHandler(platformUseCase *usecase.PlatformUseCase) *PlatformHandler {
	return &PlatformHandler{
		platformUseCase: platformUseCase,
	}
}

type applyRequest struct {
	BusinessName string   `json:"business_name" validate:"required,min=2,max=120"`
	Category     string   `json:"category" validate:"required"`
	Description  string   `json:"description" validate:"max=2000"`
	DocumentURLs []string `json:"document_urls" validate:"omitempty,dive,url"`
}

type reviewApplicationRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" validate:"max=500"`
}

type announcementRequest struct {
	Title     string     `json:"title" validate:"required,max=120"`
	Body      string     `json:"body" validate:"max=2000"`
	Audience  string     `json:"audience" validate:"omitempty,oneof=all clients providers"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *PlatformHandler) Apply(c echo.Context) error {
	var req applyRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	app, err := h.platformUseCase.Apply(c.Request().Context(), middleware.CurrentUserID(c), usecase.ApplyInput{
		BusinessName: req.BusinessName,
		Category:     req.Category,
		Description:  req.Description,
		DocumentURLs: req.DocumentURLs,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, app)
}

func (h *PlatformHandler) MyApplications(c echo.Context) error {
	items, err := h.platformUseCase.MyApplications(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

// ListApplications is admin only. ?status= defaults to pending.
func (h *PlatformHandler) ListApplications(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, total, err := h.platformUseCase.ListApplications(c.Request().Context(), c.QueryParam("status"), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *PlatformHandler) ReviewApplication(c echo.Context) error {
	var req reviewApplicationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	app, err := h.platformUseCase.ReviewApplication(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"), req.Approve, req.Note)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, app)
}

func (h *PlatformHandler) Announce(c echo.Context) error {
	var req announcementRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	n, err := h.platformUseCase.Announce(c.Request().Context(), middleware.CurrentUserID(c), usecase.AnnouncementInput{
		Title:     req.Title,
		Body:      req.Body,
		Audience:  req.Audience,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, n)
}

func (h *PlatformHandler) ListAnnouncements(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, err := h.platformUseCase.Announcements(c.Request().Context(), middleware.CurrentUserID(c), pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}
