package response

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "alima/pkg/errors"
	"alima/pkg/logger"
)

type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

func Paginated(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}

	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Timestamp: now(),
		Data: PaginatedResponse{
			Items:      items,
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	})
}

func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return handleValidationError(c, validationErr)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("%s %s: %v (cause: %v)", c.Request().Method, c.Path(), appErr, appErr.Err)
		}
		return c.JSON(appErr.Status, Response{
			Success:   false,
			Timestamp: now(),
			Error: &ErrorInfo{
				Code:    appErr.Code,
				Message: appErr.Message,
			},
		})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, Response{
			Success:   false,
			Timestamp: now(),
			Error: &ErrorInfo{
				Code:    strings.ToUpper(strings.ReplaceAll(http.StatusText(httpErr.Code), " ", "_")),
				Message: http.StatusText(httpErr.Code),
			},
		})
	}

	logger.Error("%s %s: unexpected error: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, Response{
		Success:   false,
		Timestamp: now(),
		Error: &ErrorInfo{
			Code:    "INTERNAL_ERROR",
			Message: "An unexpected error occurred",
		},
	})
}

func handleValidationError(c echo.Context, validationErr validator.ValidationErrors) error {
	message := "Invalid input data"
	if len(validationErr) > 0 {
		err := validationErr[0]
		field := strings.ToLower(err.Field())
		param := err.Param()

		switch err.Tag() {
		case "required", "required_without":
			message = field + " is required"
		case "min":
			message = field + " must be at least " + param
		case "max":
			message = field + " must be at most " + param
		case "oneof":
			message = field + " must be one of: " + param
		case "email":
			message = field + " must be a valid email address"
		case "url":
			message = field + " must be a valid URL"
		case "nefield":
			message = field + " must differ from " + strings.ToLower(param)
		default:
			message = field + " is invalid"
		}
	}

	return c.JSON(http.StatusBadRequest, Response{
		Success:   false,
		Timestamp: now(),
		Error: &ErrorInfo{
			Code:    "VALIDATION_ERROR",
			Message: message,
		},
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
