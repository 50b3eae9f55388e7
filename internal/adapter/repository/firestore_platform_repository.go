package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type firestorePlatformNotificationRepository struct {
	client *firestore.Client
}

func NewFirestorePlatformNotificationRepository(client *firestore.Client) repository.PlatformNotificationRepository {
	return &firestorePlatformNotificationRepository{
		client: client,
	}
}

func (r *firestorePlatformNotificationRepository) Create(ctx context.Context, notification *entity.PlatformNotification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	_, err := r.client.Collection(repository.CollectionPlatformNotifications).Doc(notification.ID).Set(ctx, notification)
	if err != nil {
		return errors.FromStore(err, "Failed to publish announcement")
	}
	return nil
}

func (r *firestorePlatformNotificationRepository) ListRecent(ctx context.Context, limit int) ([]*entity.PlatformNotification, error) {
	query := r.client.Collection(repository.CollectionPlatformNotifications).OrderBy("createdAt", firestore.Desc)
	return getAll[entity.PlatformNotification](ctx, paginate(query, limit, 0), "Failed to list announcements")
}

type firestoreServiceApplicationRepository struct {
	client *firestore.Client
}

func NewFirestoreServiceApplicationRepository(client *firestore.Client) repository.ServiceApplicationRepository {
	return &firestoreServiceApplicationRepository{
		client: client,
	}
}

func (r *firestoreServiceApplicationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(repository.CollectionServiceApplications)
}

func (r *firestoreServiceApplicationRepository) Create(ctx context.Context, application *entity.ServiceApplication) error {
	if application.ID == "" {
		application.ID = uuid.New().String()
	}

	_, err := r.collection().Doc(application.ID).Set(ctx, application)
	if err != nil {
		return errors.FromStore(err, "Failed to submit application")
	}
	return nil
}

func (r *firestoreServiceApplicationRepository) GetByID(ctx context.Context, id string) (*entity.ServiceApplication, error) {
	return getDoc[entity.ServiceApplication](ctx, r.collection().Doc(id), "Application")
}

func (r *firestoreServiceApplicationRepository) Update(ctx context.Context, application *entity.ServiceApplication) error {
	_, err := r.collection().Doc(application.ID).Set(ctx, application)
	if err != nil {
		return errors.FromStore(err, "Failed to update application")
	}
	return nil
}

func (r *firestoreServiceApplicationRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.ServiceApplication, int64, error) {
	query := r.collection().Query
	if status != "" {
		query = query.Where("status", "==", status)
	}

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	apps, err := getAll[entity.ServiceApplication](ctx, paginate(query.OrderBy("createdAt", firestore.Desc), limit, offset), "Failed to list applications")
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *firestoreServiceApplicationRepository) ListByUser(ctx context.Context, userID string) ([]*entity.ServiceApplication, error) {
	query := r.collection().
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	return getAll[entity.ServiceApplication](ctx, query, "Failed to list applications")
}
