package handler

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/middleware"
	"alima/internal/usecase"
	"alima/pkg/errors"
	"alima/pkg/response"
	"alima/pkg/utils"
)

type ServiceHandler struct {
	serviceUseCase *usecase.ServiceUseCase
}

func NewServiceHandler(serviceUseCase *usecase.ServiceUseCase) *ServiceHandler {
	return &ServiceHandler{
		serviceUseCase: serviceUseCase,
	}
}

type createServiceRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=120"`
	Description string   `json:"description" validate:"max=4000"`
	Category    string   `json:"category" validate:"required"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Currency    string   `json:"currency" validate:"omitempty,len=3"`
	Location    string   `json:"location"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
}

type updateServiceRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Location    *string  `json:"location"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	Status      *string  `json:"status" validate:"omitempty,oneof=active paused"`
}

func (h *ServiceHandler) CreateService(c echo.Context) error {
	var req createServiceRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	svc, err := h.serviceUseCase.CreateService(c.Request().Context(), middleware.CurrentUserID(c), usecase.CreateServiceInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Currency:    req.Currency,
		Location:    req.Location,
		Images:      req.Images,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, svc)
}

func (h *ServiceHandler) GetService(c echo.Context) error {
	listing, err := h.serviceUseCase.GetService(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listing)
}

// ListServices browses active listings. ?category= and ?provider_id=
// narrow the result.
func (h *ServiceHandler) ListServices(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)
	filter := usecase.ServiceFilter{
		Category:   c.QueryParam("category"),
		ProviderID: c.QueryParam("provider_id"),
	}

	items, total, err := h.serviceUseCase.ListServices(c.Request().Context(), filter, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *ServiceHandler) ListMyServices(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, total, err := h.serviceUseCase.ListOwnServices(c.Request().Context(), middleware.CurrentUserID(c), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *ServiceHandler) UpdateService(c echo.Context) error {
	var req updateServiceRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	svc, err := h.serviceUseCase.UpdateService(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"), usecase.UpdateServiceInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Location:    req.Location,
		Images:      req.Images,
		Status:      req.Status,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, svc)
}

func (h *ServiceHandler) DeleteService(c echo.Context) error {
	if err := h.serviceUseCase.DeleteService(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Service deleted"})
}
