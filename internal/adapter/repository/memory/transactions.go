package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type transactionRepository struct {
	store *Store
}

func NewTransactionRepository(store *Store) repository.TransactionRepository {
	return &transactionRepository{store: store}
}

func (r *transactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	return r.store.update(func() error {
		r.store.transactions[tx.ID] = cloneTransaction(tx)
		return nil
	}, repository.CollectionTransactions)
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var tx *entity.Transaction
	r.store.read(func() {
		if t, ok := r.store.transactions[id]; ok {
			tx = cloneTransaction(t)
		}
	})
	if tx == nil {
		return nil, errors.NotFound("Transaction", nil)
	}
	return tx, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *entity.Transaction) error {
	return r.store.update(func() error {
		if _, ok := r.store.transactions[tx.ID]; !ok {
			return errors.NotFound("Transaction", nil)
		}
		r.store.transactions[tx.ID] = cloneTransaction(tx)
		return nil
	}, repository.CollectionTransactions)
}

func (r *transactionRepository) List(ctx context.Context, filter repository.TransactionFilter, limit, offset int) ([]*entity.Transaction, int64, error) {
	var out []*entity.Transaction
	r.store.read(func() {
		for _, t := range r.store.transactions {
			if filter.ClientID != "" && t.ClientID != filter.ClientID {
				continue
			}
			if filter.ProviderID != "" && t.ProviderID != filter.ProviderID {
				continue
			}
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
			out = append(out, cloneTransaction(t))
		}
	})

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, limit, offset), int64(len(out)), nil
}

type paymentRequestRepository struct {
	store *Store
}

func NewPaymentRequestRepository(store *Store) repository.PaymentRequestRepository {
	return &paymentRequestRepository{store: store}
}

func (r *paymentRequestRepository) Create(ctx context.Context, request *entity.PaymentRequest) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	return r.store.update(func() error {
		r.store.payments[request.ID] = clonePaymentRequest(request)
		return nil
	}, repository.CollectionPaymentRequests)
}

func (r *paymentRequestRepository) GetByID(ctx context.Context, id string) (*entity.PaymentRequest, error) {
	var req *entity.PaymentRequest
	r.store.read(func() {
		if p, ok := r.store.payments[id]; ok {
			req = clonePaymentRequest(p)
		}
	})
	if req == nil {
		return nil, errors.NotFound("Payment request", nil)
	}
	return req, nil
}

func (r *paymentRequestRepository) Update(ctx context.Context, request *entity.PaymentRequest) error {
	return r.store.update(func() error {
		if _, ok := r.store.payments[request.ID]; !ok {
			return errors.NotFound("Payment request", nil)
		}
		r.store.payments[request.ID] = clonePaymentRequest(request)
		return nil
	}, repository.CollectionPaymentRequests)
}

func (r *paymentRequestRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.PaymentRequest, error) {
	out := []*entity.PaymentRequest{}
	r.store.read(func() {
		for _, p := range r.store.payments {
			if p.TransactionID == transactionID {
				out = append(out, clonePaymentRequest(p))
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
