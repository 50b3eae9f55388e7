package repository

import (
	"context"

	"alima/internal/domain/entity"
)

type TransactionFilter struct {
	ClientID   string
	ProviderID string
	Status     entity.TransactionStatus
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	Update(ctx context.Context, transaction *entity.Transaction) error
	List(ctx context.Context, filter TransactionFilter, limit, offset int) ([]*entity.Transaction, int64, error)
}

type PaymentRequestRepository interface {
	Create(ctx context.Context, request *entity.PaymentRequest) error
	GetByID(ctx context.Context, id string) (*entity.PaymentRequest, error)
	Update(ctx context.Context, request *entity.PaymentRequest) error
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.PaymentRequest, error)
}
