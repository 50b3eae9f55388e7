package entity

import "time"

const (
	ServiceStatusActive = "active"
	ServiceStatusPaused = "paused"
)

// Service is a listing published by a provider.
type Service struct {
	ID          string    `json:"id" firestore:"id"`
	ProviderID  string    `json:"provider_id" firestore:"providerId"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	Category    string    `json:"category" firestore:"category"`
	Price       float64   `json:"price" firestore:"price"`
	Currency    string    `json:"currency" firestore:"currency"`
	Location    string    `json:"location,omitempty" firestore:"location,omitempty"`
	Images      []string  `json:"images,omitempty" firestore:"images,omitempty"`
	Status      string    `json:"status" firestore:"status"`
	RatingTotal int       `json:"rating_total" firestore:"ratingTotal"`
	ReviewCount int       `json:"review_count" firestore:"reviewCount"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

// Rating is the average review score, 0 when there are no reviews.
func (s *Service) Rating() float64 {
	if s.ReviewCount == 0 {
		return 0
	}
	return float64(s.RatingTotal) / float64(s.ReviewCount)
}

func (s *Service) IsActive() bool {
	return s.Status == ServiceStatusActive
}
