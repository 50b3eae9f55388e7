package entity

import "time"

type NotificationType string

const (
	NotificationMessage          NotificationType = "message"
	NotificationPaymentProof     NotificationType = "payment_proof"
	NotificationPaymentConfirmed NotificationType = "payment_confirmed"
	NotificationReview           NotificationType = "review"
	NotificationRatingRequest    NotificationType = "rating_request"
	NotificationServiceBooked    NotificationType = "service_booked"
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingCanceled  NotificationType = "booking_canceled"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationMessage, NotificationPaymentProof, NotificationPaymentConfirmed,
		NotificationReview, NotificationRatingRequest, NotificationServiceBooked,
		NotificationBookingConfirmed, NotificationBookingCanceled:
		return true
	}
	return false
}

// Payload keys shared by notification producers and renderers.
const (
	PayloadSenderID       = "senderId"
	PayloadSenderName     = "senderName"
	PayloadSenderAvatar   = "senderAvatar"
	PayloadConversationID = "conversationId"
	PayloadPreview        = "preview"
	PayloadMediaURL       = "mediaUrl"
	PayloadServiceID      = "serviceId"
	PayloadServiceTitle   = "serviceTitle"
	PayloadTransactionID  = "transactionId"
	PayloadRating         = "rating"
)

// Notification is owned by its target user. Read starts false and only ever
// becomes true.
type Notification struct {
	ID        string                 `json:"id" firestore:"id"`
	UserID    string                 `json:"user_id" firestore:"userId"`
	Type      NotificationType       `json:"type" firestore:"type"`
	Read      bool                   `json:"read" firestore:"read"`
	Payload   map[string]interface{} `json:"payload,omitempty" firestore:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at" firestore:"createdAt"`
	ReadAt    *time.Time             `json:"read_at,omitempty" firestore:"readAt,omitempty"`
}
