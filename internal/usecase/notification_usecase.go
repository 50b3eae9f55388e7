package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/internal/infrastructure/events"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

type NotificationUseCase struct {
	notifRepo repository.NotificationRepository
	publisher events.Publisher
}

func NewNotificationUseCase(notifRepo repository.NotificationRepository, publisher events.Publisher) *NotificationUseCase {
	return &NotificationUseCase{
		notifRepo: notifRepo,
		publisher: publisher,
	}
}

// List returns the user's latest notifications, newest first.
func (uc *NotificationUseCase) List(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	items, err := uc.notifRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, errors.FromStore(err, "Failed to load notifications")
	}
	return items, nil
}

// MarkRead flips one notification owned by userID. It reports false when
// the notification was already read.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	n, err := uc.notifRepo.GetByID(ctx, notificationID)
	if err != nil {
		return false, errors.FromStore(err, "Notification not found")
	}
	if n.UserID != userID {
		return false, errors.Forbidden("You do not own this notification", nil)
	}
	if n.Read {
		return false, nil
	}

	changed, err := uc.notifRepo.MarkRead(ctx, notificationID)
	if err != nil {
		return false, errors.FromStore(err, "Failed to mark notification as read")
	}
	if changed {
		publish(ctx, uc.publisher, events.NotificationsRead, map[string]interface{}{
			"user_id":         userID,
			"notification_id": notificationID,
			"count":           1,
		})
	}
	return changed, nil
}

// MarkAllRead flips every unread notification of the user atomically.
func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	n, err := uc.notifRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, errors.FromStore(err, "Failed to mark notifications as read")
	}
	if n > 0 {
		publish(ctx, uc.publisher, events.NotificationsRead, map[string]interface{}{
			"user_id": userID,
			"count":   n,
		})
	}
	return n, nil
}

// Notify creates a notification for a workflow transition. A failed write
// is logged and does not fail the transition.
func (uc *NotificationUseCase) Notify(ctx context.Context, userID string, typ entity.NotificationType, payload map[string]interface{}) *entity.Notification {
	n := &entity.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Read:      false,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := uc.notifRepo.Create(ctx, n); err != nil {
		logger.Error("Notify: %s notification for %s not written: %v", typ, userID, err)
		return nil
	}
	return n
}
