package entity

import (
	"time"
)

type TransactionStatus string

const (
	TransactionPending          TransactionStatus = "pending"
	TransactionConfirmed        TransactionStatus = "confirmed"
	TransactionPaymentSubmitted TransactionStatus = "payment_submitted"
	TransactionPaid             TransactionStatus = "paid"
	TransactionCompleted        TransactionStatus = "completed"
	TransactionCanceled         TransactionStatus = "canceled"
)

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionPending:          {TransactionConfirmed, TransactionCanceled},
	TransactionConfirmed:        {TransactionPaymentSubmitted, TransactionCanceled},
	TransactionPaymentSubmitted: {TransactionPaid, TransactionConfirmed, TransactionCanceled},
	TransactionPaid:             {TransactionCompleted},
}

// CanTransition reports whether a booking may move from s to next.
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transaction is a booking of a service by a client.
type Transaction struct {
	ID               string            `json:"id" firestore:"id"`
	ServiceID        string            `json:"service_id" firestore:"serviceId"`
	ServiceTitle     string            `json:"service_title" firestore:"serviceTitle"`
	ClientID         string            `json:"client_id" firestore:"clientId"`
	ProviderID       string            `json:"provider_id" firestore:"providerId"`
	Amount           float64           `json:"amount" firestore:"amount"`
	Currency         string            `json:"currency" firestore:"currency"`
	Notes            string            `json:"notes,omitempty" firestore:"notes,omitempty"`
	ScheduledAt      *time.Time        `json:"scheduled_at,omitempty" firestore:"scheduledAt,omitempty"`
	Status           TransactionStatus `json:"status" firestore:"status"`
	PaymentRequestID string            `json:"payment_request_id,omitempty" firestore:"paymentRequestId,omitempty"`
	CancelReason     string            `json:"cancel_reason,omitempty" firestore:"cancelReason,omitempty"`
	CanceledBy       string            `json:"canceled_by,omitempty" firestore:"canceledBy,omitempty"`
	Reviewed         bool              `json:"reviewed" firestore:"reviewed"`
	CreatedAt        time.Time         `json:"created_at" firestore:"createdAt"`
	UpdatedAt        time.Time         `json:"updated_at" firestore:"updatedAt"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty" firestore:"completedAt,omitempty"`
}

func (t *Transaction) IsParty(userID string) bool {
	return t.ClientID == userID || t.ProviderID == userID
}

// Counterpart returns the other party of the booking.
func (t *Transaction) Counterpart(userID string) string {
	if userID == t.ClientID {
		return t.ProviderID
	}
	return t.ClientID
}
