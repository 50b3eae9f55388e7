package usecase

import (
	"context"
	"time"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	cache    ProfileCache
}

func NewUserUseCase(userRepo repository.UserRepository, cache ProfileCache) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		cache:    cache,
	}
}

// PublicProfile is what other users see of a profile.
type PublicProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Location    string    `json:"location,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetProfile implements session.ProfileStore.
func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	if user, ok := uc.cache.Get(ctx, userID); ok {
		return user, nil
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.FromStore(err, "User not found")
	}

	uc.cache.Set(ctx, user)
	return user, nil
}

// UpdateProfile implements session.ProfileStore.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, update entity.ProfileUpdate) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.FromStore(err, "User not found")
	}

	update.Apply(user)
	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		logger.Error("UpdateProfile: failed to save user %s: %v", userID, err)
		return nil, errors.FromStore(err, "Failed to update user profile")
	}

	uc.cache.Invalidate(ctx, userID)
	return user, nil
}

func (uc *UserUseCase) GetPublicProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	user, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Bio:         user.Bio,
		Location:    user.Location,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
	}, nil
}

// Summaries resolves profile summaries with one point read per id. Ids that
// cannot be resolved are left out.
func (uc *UserUseCase) Summaries(ctx context.Context, userIDs []string) map[string]entity.ProfileSummary {
	out := make(map[string]entity.ProfileSummary, len(userIDs))
	for _, id := range userIDs {
		if _, done := out[id]; done || id == "" {
			continue
		}
		user, err := uc.GetProfile(ctx, id)
		if err != nil {
			logger.Warn("Summaries: profile %s unavailable: %v", id, err)
			continue
		}
		out[id] = user.Summary()
	}
	return out
}

// SetRole changes a user's role. Used when a provider application is
// approved.
func (uc *UserUseCase) SetRole(ctx context.Context, userID, role string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.FromStore(err, "User not found")
	}

	user.Role = role
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, errors.FromStore(err, "Failed to update user role")
	}

	uc.cache.Invalidate(ctx, userID)
	return user, nil
}
