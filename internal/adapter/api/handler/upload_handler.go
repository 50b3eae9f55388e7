package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"alima/internal/usecase"
	"alima/pkg/errors"
	"alima/pkg/response"
)

type UploadHandler struct {
	mediaUseCase *usecase.MediaUseCase
}

func NewUploadHandler(mediaUseCase *usecase.MediaUseCase) *UploadHandler {
	return &UploadHandler{
		mediaUseCase: mediaUseCase,
	}
}

// Upload relays a multipart "file" to the media host. The response is the
// bare asset JSON, a placeholder when the host could not take the file.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("file is required", err))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Unable to read uploaded file", err))
	}
	defer file.Close()

	asset := h.mediaUseCase.Upload(c.Request().Context(), usecase.UploadInput{
		File:      file,
		Folder:    c.FormValue("folder"),
		SubjectID: c.FormValue("providerId"),
	})

	return c.JSON(http.StatusOK, asset)
}
