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

type firestoreServiceRepository struct {
	client *firestore.Client
}

func NewFirestoreServiceRepository(client *firestore.Client) repository.ServiceRepository {
	return &firestoreServiceRepository{
		client: client,
	}
}

func (r *firestoreServiceRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(repository.CollectionServices)
}

func (r *firestoreServiceRepository) Create(ctx context.Context, service *entity.Service) error {
	if service.ID == "" {
		service.ID = uuid.New().String()
	}

	_, err := r.collection().Doc(service.ID).Set(ctx, service)
	if err != nil {
		return errors.FromStore(err, "Failed to create service")
	}
	return nil
}

func (r *firestoreServiceRepository) GetByID(ctx context.Context, id string) (*entity.Service, error) {
	return getDoc[entity.Service](ctx, r.collection().Doc(id), "Service")
}

// Update rewrites the listing but leaves the rating aggregate to AddRating.
func (r *firestoreServiceRepository) Update(ctx context.Context, service *entity.Service) error {
	_, err := r.collection().Doc(service.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: service.Title},
		{Path: "description", Value: service.Description},
		{Path: "category", Value: service.Category},
		{Path: "price", Value: service.Price},
		{Path: "currency", Value: service.Currency},
		{Path: "location", Value: service.Location},
		{Path: "images", Value: service.Images},
		{Path: "status", Value: service.Status},
		{Path: "updatedAt", Value: service.UpdatedAt},
	})
	if err != nil {
		return errors.FromStore(err, "Service not found")
	}
	return nil
}

func (r *firestoreServiceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection().Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		return errors.FromStore(err, "Service not found")
	}
	return nil
}

func (r *firestoreServiceRepository) List(ctx context.Context, filter repository.ServiceFilter, limit, offset int) ([]*entity.Service, int64, error) {
	query := r.collection().Query
	if filter.Category != "" {
		query = query.Where("category", "==", filter.Category)
	}
	if filter.ProviderID != "" {
		query = query.Where("providerId", "==", filter.ProviderID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	services, err := getAll[entity.Service](ctx, paginate(query.OrderBy("createdAt", firestore.Desc), limit, offset), "Failed to list services")
	if err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

func (r *firestoreServiceRepository) AddRating(ctx context.Context, id string, rating int) error {
	_, err := r.collection().Doc(id).Update(ctx, []firestore.Update{
		{Path: "ratingTotal", Value: firestore.Increment(rating)},
		{Path: "reviewCount", Value: firestore.Increment(1)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.FromStore(err, "Service not found")
	}
	return nil
}
