package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{
		client: client,
	}
}

func (r *firestoreNotificationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(repository.CollectionNotifications)
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	_, err := r.collection().Doc(notification.ID).Set(ctx, notification)
	if err != nil {
		return errors.FromStore(err, "Failed to create notification")
	}
	return nil
}

func (r *firestoreNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	return getDoc[entity.Notification](ctx, r.collection().Doc(id), "Notification")
}

func (r *firestoreNotificationRepository) userQuery(userID string, limit int) firestore.Query {
	q := r.collection().
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func (r *firestoreNotificationRepository) unreadQuery(userID string) firestore.Query {
	return r.collection().
		Where("userId", "==", userID).
		Where("read", "==", false)
}

func (r *firestoreNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	return getAll[entity.Notification](ctx, r.userQuery(userID, limit), "Failed to list notifications")
}

func (r *firestoreNotificationRepository) WatchByUser(ctx context.Context, userID string, limit int) (repository.SnapshotStream[*entity.Notification], error) {
	return watchQuery[entity.Notification](ctx, r.userQuery(userID, limit), nil), nil
}

func (r *firestoreNotificationRepository) WatchUnreadByUser(ctx context.Context, userID string) (repository.SnapshotStream[*entity.Notification], error) {
	return watchQuery[entity.Notification](ctx, r.unreadQuery(userID), nil), nil
}

func (r *firestoreNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := count(ctx, r.unreadQuery(userID))
	return int(n), err
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	ref := r.collection().Doc(id)
	changed := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		changed = false
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Notification", err)
			}
			return err
		}
		read, err := doc.DataAt("read")
		if err == nil && read == true {
			return nil
		}
		changed = true
		return tx.Update(ref, []firestore.Update{
			{Path: "read", Value: true},
			{Path: "readAt", Value: time.Now()},
		})
	})
	if err != nil {
		return false, errors.FromStore(err, "Failed to mark notification as read")
	}
	return changed, nil
}

func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	updated, err := inBatches(ctx, maxTransactionWrites, func(ctx context.Context, limit int) (int, error) {
		n := 0
		err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			n = 0
			docs, err := tx.Documents(r.unreadQuery(userID).Limit(limit)).GetAll()
			if err != nil {
				return err
			}
			now := time.Now()
			for _, doc := range docs {
				if err := tx.Update(doc.Ref, []firestore.Update{
					{Path: "read", Value: true},
					{Path: "readAt", Value: now},
				}); err != nil {
					return err
				}
			}
			n = len(docs)
			return nil
		})
		return n, err
	})
	if err != nil {
		return updated, errors.FromStore(err, "Failed to mark notifications as read")
	}
	return updated, nil
}
