package router

import (
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/handler"
	"alima/internal/adapter/api/middleware"
)

func SetupBookingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	bookingHandler := handler.GetBookingHandler()

	transactions := e.Group("/v1/transactions")
	transactions.Use(authMiddleware.Authenticate)

	transactions.POST("", bookingHandler.Book)
	transactions.GET("", bookingHandler.ListTransactions)
	transactions.GET("/:id", bookingHandler.GetTransaction)
	transactions.POST("/:id/confirm", bookingHandler.Confirm)
	transactions.POST("/:id/cancel", bookingHandler.Cancel)
	transactions.POST("/:id/payment-proof", bookingHandler.SubmitPaymentProof)
	transactions.GET("/:id/payment-requests", bookingHandler.ListPaymentRequests)
	transactions.POST("/:id/complete", bookingHandler.Complete)
	transactions.POST("/:id/review", bookingHandler.Review)

	payments := e.Group("/v1/payment-requests")
	payments.Use(authMiddleware.Authenticate)

	payments.POST("/:id/confirm", bookingHandler.ConfirmPayment)
	payments.POST("/:id/reject", bookingHandler.RejectPayment)
}
