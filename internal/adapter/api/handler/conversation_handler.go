package handler

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/middleware"
	"alima/internal/domain/entity"
	"alima/internal/usecase"
	"alima/pkg/errors"
	"alima/pkg/response"
	"alima/pkg/utils"
)

type ConversationHandler struct {
	messagingUseCase *usecase.MessagingUseCase
}

func NewConversationHandler(messagingUseCase *usecase.MessagingUseCase) *ConversationHandler {
	return &ConversationHandler{
		messagingUseCase: messagingUseCase,
	}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Type       string `json:"type" validate:"omitempty,oneof=text image"`
	Text       string `json:"text" validate:"max=2000"`
	MediaURL   string `json:"media_url" validate:"omitempty,url"`
}

// SendMessage finds or creates the conversation with the receiver and
// dispatches the message together with its notification.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	msgType := entity.MessageType(req.Type)
	if msgType == "" {
		msgType = entity.MessageTypeText
		if req.MediaURL != "" && req.Text == "" {
			msgType = entity.MessageTypeImage
		}
	}

	result, err := h.messagingUseCase.SendMessage(c.Request().Context(), middleware.CurrentUserID(c), usecase.SendMessageInput{
		ReceiverID: req.ReceiverID,
		Type:       msgType,
		Text:       req.Text,
		MediaURL:   req.MediaURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

func (h *ConversationHandler) ListConversations(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, err := h.messagingUseCase.ListConversations(c.Request().Context(), middleware.CurrentUserID(c), pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

func (h *ConversationHandler) GetConversation(c echo.Context) error {
	view, err := h.messagingUseCase.GetConversation(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, err := h.messagingUseCase.ListMessages(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"), pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

func (h *ConversationHandler) MarkConversationRead(c echo.Context) error {
	updated, err := h.messagingUseCase.MarkConversationRead(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"updated": updated})
}

func (h *ConversationHandler) MarkMessageRead(c echo.Context) error {
	changed, err := h.messagingUseCase.MarkMessageRead(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"updated": changed})
}

// ReconcileUnread recomputes the conversation's unread counters from the
// unread messages.
func (h *ConversationHandler) ReconcileUnread(c echo.Context) error {
	conv, err := h.messagingUseCase.ReconcileUnread(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, conv)
}
