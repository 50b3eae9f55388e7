package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type firestoreReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreReviewRepository(client *firestore.Client) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client: client,
	}
}

func (r *firestoreReviewRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(repository.CollectionReviews)
}

// Create fails with CONFLICT when the document already exists. Callers key
// reviews by transaction id so a booking can only be reviewed once.
func (r *firestoreReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	_, err := r.collection().Doc(review.ID).Create(ctx, review)
	if err != nil {
		return errors.FromStore(err, "Transaction already reviewed")
	}
	return nil
}

func (r *firestoreReviewRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Review, error) {
	iter := r.collection().Where("transactionId", "==", transactionID).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Review", nil)
		}
		return nil, errors.FromStore(err, "Failed to query review")
	}

	var review entity.Review
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse review data", err)
	}
	return &review, nil
}

func (r *firestoreReviewRepository) ListByService(ctx context.Context, serviceID string, limit, offset int) ([]*entity.Review, int64, error) {
	query := r.collection().Where("serviceId", "==", serviceID)

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	reviews, err := getAll[entity.Review](ctx, paginate(query.OrderBy("createdAt", firestore.Desc), limit, offset), "Failed to list reviews")
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}
