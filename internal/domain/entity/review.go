package entity

import (
	"time"
)

// Review is left by a client after a completed booking, one per transaction.
type Review struct {
	ID            string    `json:"id" firestore:"id"`
	TransactionID string    `json:"transaction_id" firestore:"transactionId"`
	ServiceID     string    `json:"service_id" firestore:"serviceId"`
	ReviewerID    string    `json:"reviewer_id" firestore:"reviewerId"`
	ReviewerName  string    `json:"reviewer_name" firestore:"reviewerName"`
	ProviderID    string    `json:"provider_id" firestore:"providerId"`
	Rating        int       `json:"rating" firestore:"rating"`
	Comment       string    `json:"comment" firestore:"comment"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
}
