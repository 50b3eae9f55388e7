package repository

import (
	"context"

	"alima/internal/domain/entity"
)

type ServiceFilter struct {
	Category   string
	ProviderID string
	Status     string
}

type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	GetByID(ctx context.Context, id string) (*entity.Service, error)
	Update(ctx context.Context, service *entity.Service) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ServiceFilter, limit, offset int) ([]*entity.Service, int64, error)
	// AddRating atomically adds one review score to the listing aggregate.
	AddRating(ctx context.Context, id string, rating int) error
}
