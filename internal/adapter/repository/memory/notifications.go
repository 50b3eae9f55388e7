package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type notificationRepository struct {
	store *Store
}

func NewNotificationRepository(store *Store) repository.NotificationRepository {
	return &notificationRepository{store: store}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	return r.store.update(func() error {
		r.store.notifications[notification.ID] = cloneNotification(notification)
		return nil
	}, repository.CollectionNotifications)
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	var n *entity.Notification
	r.store.read(func() {
		if found, ok := r.store.notifications[id]; ok {
			n = cloneNotification(found)
		}
	})
	if n == nil {
		return nil, errors.NotFound("Notification", nil)
	}
	return n, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	r.store.read(func() {
		out = r.query(userID, false, limit)
	})
	return out, nil
}

func (r *notificationRepository) WatchByUser(ctx context.Context, userID string, limit int) (repository.SnapshotStream[*entity.Notification], error) {
	return watch(ctx, r.store, repository.CollectionNotifications, func() []*entity.Notification {
		return r.query(userID, false, limit)
	}), nil
}

func (r *notificationRepository) WatchUnreadByUser(ctx context.Context, userID string) (repository.SnapshotStream[*entity.Notification], error) {
	return watch(ctx, r.store, repository.CollectionNotifications, func() []*entity.Notification {
		return r.query(userID, true, 0)
	}), nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	r.store.read(func() {
		n = len(r.query(userID, true, 0))
	})
	return n, nil
}

// query mirrors userId == uid [AND read == false] ordered by createdAt desc.
func (r *notificationRepository) query(userID string, unreadOnly bool, limit int) []*entity.Notification {
	out := []*entity.Notification{}
	for _, n := range r.store.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, cloneNotification(n))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return limitSlice(out, limit)
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	changed := false
	err := r.store.update(func() error {
		n, ok := r.store.notifications[id]
		if !ok {
			return errors.NotFound("Notification", nil)
		}
		if n.Read {
			return nil
		}
		now := r.store.now()
		n.Read = true
		n.ReadAt = &now
		changed = true
		return nil
	}, repository.CollectionNotifications)
	return changed, err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	count := 0
	err := r.store.update(func() error {
		now := r.store.now()
		for _, n := range r.store.notifications {
			if n.UserID == userID && !n.Read {
				readAt := now
				n.Read = true
				n.ReadAt = &readAt
				count++
			}
		}
		return nil
	}, repository.CollectionNotifications)
	return count, err
}
