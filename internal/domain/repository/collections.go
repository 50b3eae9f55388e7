package repository

// Document store collection names.
const (
	CollectionUsers                 = "users"
	CollectionServices              = "services"
	CollectionConversations         = "conversations"
	CollectionMessages              = "messages"
	CollectionNotifications         = "notifications"
	CollectionTransactions          = "transactions"
	CollectionReviews               = "reviews"
	CollectionPaymentRequests       = "payment_requests"
	CollectionPlatformNotifications = "platform_notifications"
	CollectionServiceApplications   = "service_applications"
)
