package repository

import (
	"context"

	"alima/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.Review, error)
	ListByService(ctx context.Context, serviceID string, limit, offset int) ([]*entity.Review, int64, error)
}
