package handler

import (
	"alima/internal/usecase"
)

var (
	authHandler         *AuthHandler
	userHandler         *UserHandler
	serviceHandler      *ServiceHandler
	conversationHandler *ConversationHandler
	notificationHandler *NotificationHandler
	bookingHandler      *BookingHandler
	uploadHandler       *UploadHandler
	platformHandler     *PlatformHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	serviceUseCase *usecase.ServiceUseCase,
	messagingUseCase *usecase.MessagingUseCase,
	notificationUseCase *usecase.NotificationUseCase,
	feedUseCase *usecase.FeedUseCase,
	bookingUseCase *usecase.BookingUseCase,
	mediaUseCase *usecase.MediaUseCase,
	platformUseCase *usecase.PlatformUseCase,
	secureCookies bool,
) {
	authHandler = NewAuthHandler(authUseCase, secureCookies)
	userHandler = NewUserHandler(userUseCase)
	serviceHandler = NewServiceHandler(serviceUseCase)
	conversationHandler = NewConversationHandler(messagingUseCase)
	notificationHandler = NewNotificationHandler(notificationUseCase, feedUseCase)
	bookingHandler = NewBookingHandler(bookingUseCase)
	uploadHandler = NewUploadHandler(mediaUseCase)
	platformHandler = NewPlatformHandler(platformUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetServiceHandler() *ServiceHandler {
	return serviceHandler
}

func GetConversationHandler() *ConversationHandler {
	return conversationHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func GetBookingHandler() *BookingHandler {
	return bookingHandler
}

func GetUploadHandler() *UploadHandler {
	return uploadHandler
}

func GetPlatformHandler() *PlatformHandler {
	return platformHandler
}
