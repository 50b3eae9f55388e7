package entity

import "time"

type MessageType string

const (
	MessageTypeText         MessageType = "text"
	MessageTypeImage        MessageType = "image"
	MessageTypePaymentProof MessageType = "payment_proof"
)

// Message belongs to exactly one conversation. Only Read (and ReadAt) ever
// change after creation, and only from false to true.
type Message struct {
	ID             string      `json:"id" firestore:"id"`
	ConversationID string      `json:"conversation_id" firestore:"conversationId"`
	SenderID       string      `json:"sender_id" firestore:"senderId"`
	ReceiverID     string      `json:"receiver_id" firestore:"receiverId"`
	Type           MessageType `json:"type" firestore:"type"`
	Text           string      `json:"text,omitempty" firestore:"text,omitempty"`
	MediaURL       string      `json:"media_url,omitempty" firestore:"mediaUrl,omitempty"`
	TransactionID  string      `json:"transaction_id,omitempty" firestore:"transactionId,omitempty"`
	Read           bool        `json:"read" firestore:"read"`
	ReadAt         *time.Time  `json:"read_at,omitempty" firestore:"readAt,omitempty"`
	CreatedAt      time.Time   `json:"created_at" firestore:"createdAt"`
}

// Preview is the text shown in conversation lists and notifications.
func (m *Message) Preview() string {
	if m.Text != "" {
		return m.Text
	}
	switch m.Type {
	case MessageTypePaymentProof:
		return "Sent a payment proof"
	default:
		if m.MediaURL != "" {
			return "Sent an image"
		}
	}
	return ""
}
