package entity

import (
	"time"
)

const (
	RoleClient   = "client"
	RoleProvider = "provider"
	RoleAdmin    = "admin"

	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

type User struct {
	ID          string `json:"id" firestore:"id"`
	Email       string `json:"email" firestore:"email"`
	DisplayName string `json:"display_name" firestore:"displayName"`
	PhotoURL    string `json:"photo_url,omitempty" firestore:"photoURL,omitempty"`
	Phone       string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Bio         string `json:"bio,omitempty" firestore:"bio,omitempty"`
	Location    string `json:"location,omitempty" firestore:"location,omitempty"`
	Role        string `json:"role" firestore:"role"`
	Status      string `json:"status" firestore:"status"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsProvider reports whether the user may publish service listings. Admins
// can act as providers.
func (u *User) IsProvider() bool {
	return u.Role == RoleProvider || u.Role == RoleAdmin
}

// ProfileSummary is the denormalized slice of a profile copied into
// conversations and notification payloads.
type ProfileSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

func (u *User) Summary() ProfileSummary {
	return ProfileSummary{ID: u.ID, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=2,max=60"`
	PhotoURL    *string `json:"photo_url,omitempty" validate:"omitempty,url"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=100"`
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.PhotoURL != nil {
		u.PhotoURL = *p.PhotoURL
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
}
