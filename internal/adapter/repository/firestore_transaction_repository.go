package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type firestoreTransactionRepository struct {
	client *firestore.Client
}

func NewFirestoreTransactionRepository(client *firestore.Client) repository.TransactionRepository {
	return &firestoreTransactionRepository{
		client: client,
	}
}

func (r *firestoreTransactionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(repository.CollectionTransactions)
}

func (r *firestoreTransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if transaction.CreatedAt.IsZero() {
		now := time.Now()
		transaction.CreatedAt = now
		transaction.UpdatedAt = now
	}

	_, err := r.collection().Doc(transaction.ID).Set(ctx, transaction)
	if err != nil {
		return errors.FromStore(err, "Failed to create transaction")
	}
	return nil
}

func (r *firestoreTransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return getDoc[entity.Transaction](ctx, r.collection().Doc(id), "Transaction")
}

func (r *firestoreTransactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	_, err := r.collection().Doc(transaction.ID).Set(ctx, transaction)
	if err != nil {
		return errors.FromStore(err, "Failed to update transaction")
	}
	return nil
}

func (r *firestoreTransactionRepository) List(ctx context.Context, filter repository.TransactionFilter, limit, offset int) ([]*entity.Transaction, int64, error) {
	query := r.collection().Query
	if filter.ClientID != "" {
		query = query.Where("clientId", "==", filter.ClientID)
	}
	if filter.ProviderID != "" {
		query = query.Where("providerId", "==", filter.ProviderID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	transactions, err := getAll[entity.Transaction](ctx, paginate(query.OrderBy("createdAt", firestore.Desc), limit, offset), "Failed to list transactions")
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

type firestorePaymentRequestRepository struct {
	client *firestore.Client
}

func NewFirestorePaymentRequestRepository(client *firestore.Client) repository.PaymentRequestRepository {
	return &firestorePaymentRequestRepository{
		client: client,
	}
}

func (r *firestorePaymentRequestRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(repository.CollectionPaymentRequests)
}

func (r *firestorePaymentRequestRepository) Create(ctx context.Context, request *entity.PaymentRequest) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}

	_, err := r.collection().Doc(request.ID).Set(ctx, request)
	if err != nil {
		return errors.FromStore(err, "Failed to create payment request")
	}
	return nil
}

func (r *firestorePaymentRequestRepository) GetByID(ctx context.Context, id string) (*entity.PaymentRequest, error) {
	return getDoc[entity.PaymentRequest](ctx, r.collection().Doc(id), "Payment request")
}

func (r *firestorePaymentRequestRepository) Update(ctx context.Context, request *entity.PaymentRequest) error {
	_, err := r.collection().Doc(request.ID).Set(ctx, request)
	if err != nil {
		return errors.FromStore(err, "Failed to update payment request")
	}
	return nil
}

func (r *firestorePaymentRequestRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.PaymentRequest, error) {
	query := r.collection().
		Where("transactionId", "==", transactionID).
		OrderBy("createdAt", firestore.Desc)
	return getAll[entity.PaymentRequest](ctx, query, "Failed to list payment requests")
}
