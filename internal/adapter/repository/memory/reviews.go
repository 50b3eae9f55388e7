package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type reviewRepository struct {
	store *Store
}

func NewReviewRepository(store *Store) repository.ReviewRepository {
	return &reviewRepository{store: store}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	return r.store.update(func() error {
		for _, existing := range r.store.reviews {
			if existing.TransactionID == review.TransactionID {
				return errors.Conflict("Transaction already reviewed")
			}
		}
		r.store.reviews[review.ID] = cloneReview(review)
		return nil
	}, repository.CollectionReviews)
}

func (r *reviewRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Review, error) {
	var review *entity.Review
	r.store.read(func() {
		for _, rv := range r.store.reviews {
			if rv.TransactionID == transactionID {
				review = cloneReview(rv)
				return
			}
		}
	})
	if review == nil {
		return nil, errors.NotFound("Review", nil)
	}
	return review, nil
}

func (r *reviewRepository) ListByService(ctx context.Context, serviceID string, limit, offset int) ([]*entity.Review, int64, error) {
	out := []*entity.Review{}
	r.store.read(func() {
		for _, rv := range r.store.reviews {
			if rv.ServiceID == serviceID {
				out = append(out, cloneReview(rv))
			}
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
