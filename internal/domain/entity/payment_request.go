package entity

import "time"

const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentRejected  = "rejected"
	// PaymentCanceled closes a proof whose booking was canceled before the
	// provider decided on it.
	PaymentCanceled = "canceled"
)

// PaymentRequest records a manual payment proof submitted by a client for a
// booking, and the provider's decision on it.
type PaymentRequest struct {
	ID             string     `json:"id" firestore:"id"`
	TransactionID  string     `json:"transaction_id" firestore:"transactionId"`
	ClientID       string     `json:"client_id" firestore:"clientId"`
	ProviderID     string     `json:"provider_id" firestore:"providerId"`
	Amount         float64    `json:"amount" firestore:"amount"`
	ProofURL       string     `json:"proof_url" firestore:"proofUrl"`
	Note           string     `json:"note,omitempty" firestore:"note,omitempty"`
	Status         string     `json:"status" firestore:"status"`
	RejectReason   string     `json:"reject_reason,omitempty" firestore:"rejectReason,omitempty"`
	ConversationID string     `json:"conversation_id,omitempty" firestore:"conversationId,omitempty"`
	CreatedAt      time.Time  `json:"created_at" firestore:"createdAt"`
	DecidedAt      *time.Time `json:"decided_at,omitempty" firestore:"decidedAt,omitempty"`
}
