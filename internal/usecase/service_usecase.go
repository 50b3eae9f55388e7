package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

type ServiceUseCase struct {
	serviceRepo repository.ServiceRepository
	users       *UserUseCase
}

func NewServiceUseCase(serviceRepo repository.ServiceRepository, users *UserUseCase) *ServiceUseCase {
	return &ServiceUseCase{
		serviceRepo: serviceRepo,
		users:       users,
	}
}

type CreateServiceInput struct {
	Title       string
	Description string
	Category    string
	Price       float64
	Currency    string
	Location    string
	Images      []string
}

type UpdateServiceInput struct {
	Title       *string
	Description *string
	Category    *string
	Price       *float64
	Location    *string
	Images      []string
	Status      *string
}

// ServiceListing is a listing with its provider's public profile.
type ServiceListing struct {
	*entity.Service
	Rating   float64                `json:"rating"`
	Provider *entity.ProfileSummary `json:"provider,omitempty"`
}

type ServiceFilter struct {
	Category   string
	ProviderID string
}

func (uc *ServiceUseCase) CreateService(ctx context.Context, providerID string, input CreateServiceInput) (*entity.Service, error) {
	provider, err := uc.users.GetProfile(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if !provider.IsProvider() {
		return nil, errors.Forbidden("Only providers can publish services", nil)
	}

	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "IDR"
	}

	now := time.Now()
	svc := &entity.Service{
		ID:          uuid.New().String(),
		ProviderID:  providerID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    strings.ToLower(input.Category),
		Price:       input.Price,
		Currency:    currency,
		Location:    input.Location,
		Images:      input.Images,
		Status:      entity.ServiceStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.serviceRepo.Create(ctx, svc); err != nil {
		logger.Error("CreateService: provider %s: %v", providerID, err)
		return nil, errors.FromStore(err, "Failed to create service")
	}
	return svc, nil
}

func (uc *ServiceUseCase) GetService(ctx context.Context, id string) (*ServiceListing, error) {
	svc, err := uc.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.FromStore(err, "Service not found")
	}
	return uc.listings(ctx, []*entity.Service{svc})[0], nil
}

// ListServices browses active listings. Each result costs one extra point
// read for its provider profile.
func (uc *ServiceUseCase) ListServices(ctx context.Context, filter ServiceFilter, limit, offset int) ([]*ServiceListing, int64, error) {
	items, total, err := uc.serviceRepo.List(ctx, repository.ServiceFilter{
		Category:   strings.ToLower(filter.Category),
		ProviderID: filter.ProviderID,
		Status:     entity.ServiceStatusActive,
	}, limit, offset)
	if err != nil {
		return nil, 0, errors.FromStore(err, "Failed to list services")
	}
	return uc.listings(ctx, items), total, nil
}

// ListOwnServices lists every listing of the provider, paused ones
// included.
func (uc *ServiceUseCase) ListOwnServices(ctx context.Context, providerID string, limit, offset int) ([]*entity.Service, int64, error) {
	items, total, err := uc.serviceRepo.List(ctx, repository.ServiceFilter{ProviderID: providerID}, limit, offset)
	if err != nil {
		return nil, 0, errors.FromStore(err, "Failed to list services")
	}
	return items, total, nil
}

func (uc *ServiceUseCase) listings(ctx context.Context, items []*entity.Service) []*ServiceListing {
	ids := make([]string, 0, len(items))
	for _, s := range items {
		ids = append(ids, s.ProviderID)
	}
	providers := uc.users.Summaries(ctx, ids)

	out := make([]*ServiceListing, 0, len(items))
	for _, s := range items {
		l := &ServiceListing{Service: s, Rating: s.Rating()}
		if p, ok := providers[s.ProviderID]; ok {
			summary := p
			l.Provider = &summary
		}
		out = append(out, l)
	}
	return out
}

func (uc *ServiceUseCase) UpdateService(ctx context.Context, providerID, serviceID string, input UpdateServiceInput) (*entity.Service, error) {
	svc, err := uc.ownedService(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		svc.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		svc.Description = *input.Description
	}
	if input.Category != nil {
		svc.Category = strings.ToLower(*input.Category)
	}
	if input.Price != nil {
		svc.Price = *input.Price
	}
	if input.Location != nil {
		svc.Location = *input.Location
	}
	if input.Images != nil {
		svc.Images = input.Images
	}
	if input.Status != nil {
		switch *input.Status {
		case entity.ServiceStatusActive, entity.ServiceStatusPaused:
			svc.Status = *input.Status
		default:
			return nil, errors.BadRequest("Invalid service status", nil)
		}
	}
	svc.UpdatedAt = time.Now()

	if err := uc.serviceRepo.Update(ctx, svc); err != nil {
		return nil, errors.FromStore(err, "Failed to update service")
	}
	return svc, nil
}

func (uc *ServiceUseCase) DeleteService(ctx context.Context, providerID, serviceID string) error {
	if _, err := uc.ownedService(ctx, providerID, serviceID); err != nil {
		return err
	}
	if err := uc.serviceRepo.Delete(ctx, serviceID); err != nil {
		return errors.FromStore(err, "Failed to delete service")
	}
	return nil
}

func (uc *ServiceUseCase) ownedService(ctx context.Context, providerID, serviceID string) (*entity.Service, error) {
	svc, err := uc.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, errors.FromStore(err, "Service not found")
	}
	if svc.ProviderID != providerID {
		return nil, errors.Forbidden("You do not own this service", nil)
	}
	return svc, nil
}
