package router

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/handler"
	"alima/internal/adapter/api/middleware"
)

func SetupConversationRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	conversationHandler := handler.GetConversationHandler()

	conversations := e.Group("/v1/conversations")
	conversations.Use(authMiddleware.Authenticate)

	conversations.GET("", conversationHandler.ListConversations)
	conversations.GET("/:id", conversationHandler.GetConversation)
	conversations.GET("/:id/messages", conversationHandler.ListMessages)
	conversations.POST("/:id/read", conversationHandler.MarkConversationRead)
	conversations.POST("/:id/reconcile", conversationHandler.ReconcileUnread)

	messages := e.Group("/v1/messages")
	messages.Use(authMiddleware.Authenticate)

	messages.POST("", conversationHandler.SendMessage)
	messages.POST("/:id/read", conversationHandler.MarkMessageRead)
}
