package entity

import "time"

const (
	AudienceAll       = "all"
	AudienceClients   = "clients"
	AudienceProviders = "providers"
)

// PlatformNotification is an announcement published by an admin.
type PlatformNotification struct {
	ID        string     `json:"id" firestore:"id"`
	Title     string     `json:"title" firestore:"title"`
	Body      string     `json:"body" firestore:"body"`
	Audience  string     `json:"audience" firestore:"audience"`
	CreatedBy string     `json:"created_by" firestore:"createdBy"`
	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" firestore:"expiresAt,omitempty"`
}

// VisibleTo reports whether the announcement targets a user with role at now.
func (p *PlatformNotification) VisibleTo(role string, now time.Time) bool {
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return false
	}
	switch p.Audience {
	case AudienceClients:
		return role == RoleClient
	case AudienceProviders:
		return role == RoleProvider
	}
	return true
}

const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// ServiceApplication is a request from a user to become a provider.
type ServiceApplication struct {
	ID           string     `json:"id" firestore:"id"`
	UserID       string     `json:"user_id" firestore:"userId"`
	BusinessName string     `json:"business_name" firestore:"businessName"`
	Category     string     `json:"category" firestore:"category"`
	Description  string     `json:"description" firestore:"description"`
	DocumentURLs []string   `json:"document_urls,omitempty" firestore:"documentUrls,omitempty"`
	Status       string     `json:"status" firestore:"status"`
	ReviewedBy   string     `json:"reviewed_by,omitempty" firestore:"reviewedBy,omitempty"`
	ReviewNote   string     `json:"review_note,omitempty" firestore:"reviewNote,omitempty"`
	CreatedAt    time.Time  `json:"created_at" firestore:"createdAt"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty" firestore:"reviewedAt,omitempty"`
}
