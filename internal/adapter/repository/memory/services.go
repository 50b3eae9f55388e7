package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type serviceRepository struct {
	store *Store
}

func NewServiceRepository(store *Store) repository.ServiceRepository {
	return &serviceRepository{store: store}
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	if service.ID == "" {
		service.ID = uuid.New().String()
	}
	return r.store.update(func() error {
		r.store.services[service.ID] = cloneService(service)
		return nil
	}, repository.CollectionServices)
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*entity.Service, error) {
	var svc *entity.Service
	r.store.read(func() {
		if s, ok := r.store.services[id]; ok {
			svc = cloneService(s)
		}
	})
	if svc == nil {
		return nil, errors.NotFound("Service", nil)
	}
	return svc, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	return r.store.update(func() error {
		if _, ok := r.store.services[service.ID]; !ok {
			return errors.NotFound("Service", nil)
		}
		r.store.services[service.ID] = cloneService(service)
		return nil
	}, repository.CollectionServices)
}

func (r *serviceRepository) Delete(ctx context.Context, id string) error {
	return r.store.update(func() error {
		if _, ok := r.store.services[id]; !ok {
			return errors.NotFound("Service", nil)
		}
		delete(r.store.services, id)
		return nil
	}, repository.CollectionServices)
}

func (r *serviceRepository) List(ctx context.Context, filter repository.ServiceFilter, limit, offset int) ([]*entity.Service, int64, error) {
	var out []*entity.Service
	r.store.read(func() {
		for _, s := range r.store.services {
			if filter.Category != "" && s.Category != filter.Category {
				continue
			}
			if filter.ProviderID != "" && s.ProviderID != filter.ProviderID {
				continue
			}
			if filter.Status != "" && s.Status != filter.Status {
				continue
			}
			out = append(out, cloneService(s))
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

func (r *serviceRepository) AddRating(ctx context.Context, id string, rating int) error {
	return r.store.update(func() error {
		s, ok := r.store.services[id]
		if !ok {
			return errors.NotFound("Service", nil)
		}
		s.RatingTotal += rating
		s.ReviewCount++
		return nil
	}, repository.CollectionServices)
}
