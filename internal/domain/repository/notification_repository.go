package repository

import (
	"context"

	"alima/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	WatchByUser(ctx context.Context, userID string, limit int) (SnapshotStream[*entity.Notification], error)
	WatchUnreadByUser(ctx context.Context, userID string) (SnapshotStream[*entity.Notification], error)
	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkRead reports false when the notification was already read.
	MarkRead(ctx context.Context, id string) (bool, error)
	// MarkAllRead flips every unread notification of the user in one atomic
	// write and returns how many changed.
	MarkAllRead(ctx context.Context, userID string) (int, error)
}
