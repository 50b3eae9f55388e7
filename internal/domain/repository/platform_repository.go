package repository

import (
	"context"

	"alima/internal/domain/entity"
)

type PlatformNotificationRepository interface {
	Create(ctx context.Context, notification *entity.PlatformNotification) error
	ListRecent(ctx context.Context, limit int) ([]*entity.PlatformNotification, error)
}

type ServiceApplicationRepository interface {
	Create(ctx context.Context, application *entity.ServiceApplication) error
	GetByID(ctx context.Context, id string) (*entity.ServiceApplication, error)
	Update(ctx context.Context, application *entity.ServiceApplication) error
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.ServiceApplication, int64, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.ServiceApplication, error)
}
