package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	ws "alima/internal/infrastructure/websocket"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

// PlatformUseCase covers provider applications and admin announcements.
type PlatformUseCase struct {
	applicationRepo  repository.ServiceApplicationRepository
	announcementRepo repository.PlatformNotificationRepository
	users            *UserUseCase
	broadcaster      Broadcaster
	now              func() time.Time
}

func NewPlatformUseCase(
	applicationRepo repository.ServiceApplicationRepository,
	announcementRepo repository.PlatformNotificationRepository,
	users *UserUseCase,
	broadcaster Broadcaster,
) *PlatformUseCase {
	return &PlatformUseCase{
		applicationRepo:  applicationRepo,
		announcementRepo: announcementRepo,
		users:            users,
		broadcaster:      broadcaster,
		now:              time.Now,
	}
}

type ApplyInput struct {
	BusinessName string
	Category     string
	Description  string
	DocumentURLs []string
}

type AnnouncementInput struct {
	Title     string
	Body      string
	Audience  string
	ExpiresAt *time.Time
}

func (uc *PlatformUseCase) Apply(ctx context.Context, userID string, input ApplyInput) (*entity.ServiceApplication, error) {
	user, err := uc.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsProvider() {
		return nil, errors.BadRequest("You are already a provider", nil)
	}

	existing, err := uc.applicationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.FromStore(err, "Failed to load applications")
	}
	for _, a := range existing {
		if a.Status == entity.ApplicationPending {
			return nil, errors.Conflict("You already have a pending application")
		}
	}

	app := &entity.ServiceApplication{
		ID:           uuid.New().String(),
		UserID:       userID,
		BusinessName: strings.TrimSpace(input.BusinessName),
		Category:     strings.ToLower(input.Category),
		Description:  input.Description,
		DocumentURLs: input.DocumentURLs,
		Status:       entity.ApplicationPending,
		CreatedAt:    uc.now(),
	}
	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		return nil, errors.FromStore(err, "Failed to submit application")
	}
	return app, nil
}

func (uc *PlatformUseCase) MyApplications(ctx context.Context, userID string) ([]*entity.ServiceApplication, error) {
	items, err := uc.applicationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.FromStore(err, "Failed to load applications")
	}
	return items, nil
}

func (uc *PlatformUseCase) ListApplications(ctx context.Context, status string, limit, offset int) ([]*entity.ServiceApplication, int64, error) {
	if status == "" {
		status = entity.ApplicationPending
	}
	items, total, err := uc.applicationRepo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, errors.FromStore(err, "Failed to load applications")
	}
	return items, total, nil
}

// ReviewApplication records an admin decision. Approval turns the
// applicant into a provider.
func (uc *PlatformUseCase) ReviewApplication(ctx context.Context, adminID, applicationID string, approve bool, note string) (*entity.ServiceApplication, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, errors.FromStore(err, "Application not found")
	}
	if app.Status != entity.ApplicationPending {
		return nil, errors.BadRequest("Application was already reviewed", nil)
	}

	now := uc.now()
	app.Status = entity.ApplicationRejected
	if approve {
		app.Status = entity.ApplicationApproved
	}
	app.ReviewedBy = adminID
	app.ReviewNote = note
	app.ReviewedAt = &now

	if approve {
		if _, err := uc.users.SetRole(ctx, app.UserID, entity.RoleProvider); err != nil {
			return nil, err
		}
	}
	if err := uc.applicationRepo.Update(ctx, app); err != nil {
		logger.Error("ReviewApplication: %s decided but not saved: %v", applicationID, err)
		return nil, errors.FromStore(err, "Failed to save application")
	}
	return app, nil
}

// Announce stores an announcement and pushes it to every connected client.
func (uc *PlatformUseCase) Announce(ctx context.Context, adminID string, input AnnouncementInput) (*entity.PlatformNotification, error) {
	audience := input.Audience
	switch audience {
	case "":
		audience = entity.AudienceAll
	case entity.AudienceAll, entity.AudienceClients, entity.AudienceProviders:
	default:
		return nil, errors.BadRequest("Invalid audience", nil)
	}

	n := &entity.PlatformNotification{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(input.Title),
		Body:      input.Body,
		Audience:  audience,
		CreatedBy: adminID,
		CreatedAt: uc.now(),
		ExpiresAt: input.ExpiresAt,
	}
	if err := uc.announcementRepo.Create(ctx, n); err != nil {
		return nil, errors.FromStore(err, "Failed to publish announcement")
	}

	if uc.broadcaster != nil {
		uc.broadcaster.Broadcast(ws.Frame{Type: ws.FrameAnnouncement, Data: n, Timestamp: n.CreatedAt.Format(time.RFC3339)})
	}
	return n, nil
}

// Announcements lists the recent announcements visible to the user. An
// empty userID only sees announcements addressed to everybody.
func (uc *PlatformUseCase) Announcements(ctx context.Context, userID string, limit int) ([]*entity.PlatformNotification, error) {
	role := ""
	if userID != "" {
		user, err := uc.users.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		role = user.Role
	}

	items, err := uc.announcementRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, errors.FromStore(err, "Failed to load announcements")
	}

	now := uc.now()
	out := make([]*entity.PlatformNotification, 0, len(items))
	for _, n := range items {
		if n.VisibleTo(role, now) {
			out = append(out, n)
		}
	}
	return out, nil
}
