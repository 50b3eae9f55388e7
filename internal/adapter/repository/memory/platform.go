package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type platformNotificationRepository struct {
	store *Store
}

func NewPlatformNotificationRepository(store *Store) repository.PlatformNotificationRepository {
	return &platformNotificationRepository{store: store}
}

func (r *platformNotificationRepository) Create(ctx context.Context, notification *entity.PlatformNotification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	return r.store.update(func() error {
		r.store.announcements[notification.ID] = cloneAnnouncement(notification)
		return nil
	}, repository.CollectionPlatformNotifications)
}

func (r *platformNotificationRepository) ListRecent(ctx context.Context, limit int) ([]*entity.PlatformNotification, error) {
	out := []*entity.PlatformNotification{}
	r.store.read(func() {
		for _, p := range r.store.announcements {
			out = append(out, cloneAnnouncement(p))
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return limitSlice(out, limit), nil
}

type serviceApplicationRepository struct {
	store *Store
}

func NewServiceApplicationRepository(store *Store) repository.ServiceApplicationRepository {
	return &serviceApplicationRepository{store: store}
}

func (r *serviceApplicationRepository) Create(ctx context.Context, application *entity.ServiceApplication) error {
	if application.ID == "" {
		application.ID = uuid.New().String()
	}
	return r.store.update(func() error {
		r.store.applications[application.ID] = cloneApplication(application)
		return nil
	}, repository.CollectionServiceApplications)
}

func (r *serviceApplicationRepository) GetByID(ctx context.Context, id string) (*entity.ServiceApplication, error) {
	var app *entity.ServiceApplication
	r.store.read(func() {
		if a, ok := r.store.applications[id]; ok {
			app = cloneApplication(a)
		}
	})
	if app == nil {
		return nil, errors.NotFound("Application", nil)
	}
	return app, nil
}

func (r *serviceApplicationRepository) Update(ctx context.Context, application *entity.ServiceApplication) error {
	return r.store.update(func() error {
		if _, ok := r.store.applications[application.ID]; !ok {
			return errors.NotFound("Application", nil)
		}
		r.store.applications[application.ID] = cloneApplication(application)
		return nil
	}, repository.CollectionServiceApplications)
}

func (r *serviceApplicationRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.ServiceApplication, int64, error) {
	out := []*entity.ServiceApplication{}
	r.store.read(func() {
		for _, a := range r.store.applications {
			if status == "" || a.Status == status {
				out = append(out, cloneApplication(a))
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, limit, offset), int64(len(out)), nil
}

func (r *serviceApplicationRepository) ListByUser(ctx context.Context, userID string) ([]*entity.ServiceApplication, error) {
	out := []*entity.ServiceApplication{}
	r.store.read(func() {
		for _, a := range r.store.applications {
			if a.UserID == userID {
				out = append(out, cloneApplication(a))
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
