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

type BookingHandler struct {
	bookingUseCase *usecase.BookingUseCase
}

func NewBookingHandler(bookingUseCase *usecase.BookingUseCase) *BookingHandler {
	return &BookingHandler{
		bookingUseCase: bookingUseCase,
	}
}

type bookRequest struct {
	ServiceID   string     `json:"service_id" validate:"required"`
	Notes       string     `json:"notes" validate:"max=1000"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type paymentProofRequest struct {
	ProofURL string `json:"proof_url" validate:"required,url"`
	Note     string `json:"note" validate:"max=500"`
}

type rejectPaymentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

func (h *BookingHandler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.bookingUseCase.Book(c.Request().Context(), middleware.CurrentUserID(c), usecase.BookInput{
		ServiceID:   req.ServiceID,
		Notes:       req.Notes,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, tx)
}

// ListTransactions accepts ?role=client|provider and ?status=.
func (h *BookingHandler) ListTransactions(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)
	filter := usecase.TransactionFilter{
		Role:   c.QueryParam("role"),
		Status: c.QueryParam("status"),
	}

	items, total, err := h.bookingUseCase.ListTransactions(c.Request().Context(), middleware.CurrentUserID(c), filter, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *BookingHandler) GetTransaction(c echo.Context) error {
	tx, err := h.bookingUseCase.GetTransaction(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *BookingHandler) Confirm(c echo.Context) error {
	tx, err := h.bookingUseCase.Confirm(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.bookingUseCase.Cancel(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"), req.Reason)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *BookingHandler) SubmitPaymentProof(c echo.Context) error {
	var req paymentProofRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	pr, err := h.bookingUseCase.SubmitPaymentProof(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"), usecase.PaymentProofInput{
		ProofURL: req.ProofURL,
		Note:     req.Note,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, pr)
}

func (h *BookingHandler) ListPaymentRequests(c echo.Context) error {
	items, err := h.bookingUseCase.ListPaymentRequests(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

func (h *BookingHandler) ConfirmPayment(c echo.Context) error {
	tx, err := h.bookingUseCase.ConfirmPayment(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *BookingHandler) RejectPayment(c echo.Context) error {
	var req rejectPaymentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.bookingUseCase.RejectPayment(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"), req.Reason)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *BookingHandler) Complete(c echo.Context) error {
	tx, err := h.bookingUseCase.Complete(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *BookingHandler) Review(c echo.Context) error {
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	review, err := h.bookingUseCase.Review(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"), usecase.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, review)
}

func (h *BookingHandler) ListServiceReviews(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, total, err := h.bookingUseCase.ListReviews(c.Request().Context(), c.Param("id"), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}
