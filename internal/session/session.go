// Package session holds the identity of the caller for the duration of one
// request or websocket connection. It replaces any process-wide "current
// user": every handler receives the session explicitly.
package session

import (
	"context"
	"sync"

	"alima/internal/domain/entity"
)

// Method records how the caller authenticated.
type Method string

const (
	MethodBearer Method = "bearer"
	MethodCookie Method = "cookie"
)

// ProfileStore loads and edits user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID string, update entity.ProfileUpdate) (*entity.User, error)
}

type Session struct {
	userID string
	method Method
	store  ProfileStore

	mu      sync.Mutex
	profile *entity.User
}

func New(userID string, method Method, store ProfileStore) *Session {
	return &Session{userID: userID, method: method, store: store}
}

func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) Method() Method {
	return s.method
}

// Profile loads the caller's profile on first use and reuses it afterwards.
func (s *Session) Profile(ctx context.Context) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile != nil {
		return s.profile, nil
	}

	profile, err := s.store.GetProfile(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	s.profile = profile
	return profile, nil
}

// UpdateProfile writes the change and refreshes the cached profile.
func (s *Session) UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.User, error) {
	profile, err := s.store.UpdateProfile(ctx, s.userID, update)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
	return profile, nil
}

type contextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by the auth middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
