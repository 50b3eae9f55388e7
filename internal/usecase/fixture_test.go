package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"alima/internal/adapter/repository/memory"
	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/internal/infrastructure/cache"
	"alima/internal/infrastructure/events"
)

type fixture struct {
	store         *memory.Store
	userRepo      repository.UserRepository
	convRepo      repository.ConversationRepository
	notifRepo     repository.NotificationRepository
	serviceRepo   repository.ServiceRepository
	txRepo        repository.TransactionRepository
	paymentRepo   repository.PaymentRequestRepository
	reviewRepo    repository.ReviewRepository
	users         *UserUseCase
	messaging     *MessagingUseCase
	notifications *NotificationUseCase
	bookings      *BookingUseCase
	services      *ServiceUseCase
	feeds         *FeedUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		store:       store,
		userRepo:    memory.NewUserRepository(store),
		convRepo:    memory.NewConversationRepository(store),
		notifRepo:   memory.NewNotificationRepository(store),
		serviceRepo: memory.NewServiceRepository(store),
		txRepo:      memory.NewTransactionRepository(store),
		paymentRepo: memory.NewPaymentRequestRepository(store),
		reviewRepo:  memory.NewReviewRepository(store),
	}

	publisher := events.NoopPublisher{}
	f.users = NewUserUseCase(f.userRepo, cache.NoopProfileCache{})
	f.messaging = NewMessagingUseCase(f.convRepo, f.users, publisher, nil)
	f.notifications = NewNotificationUseCase(f.notifRepo, publisher)
	f.services = NewServiceUseCase(f.serviceRepo, f.users)
	f.bookings = NewBookingUseCase(f.txRepo, f.paymentRepo, f.serviceRepo, f.reviewRepo, f.users, f.messaging, f.notifications, publisher)
	f.feeds = NewFeedUseCase(f.convRepo, f.notifRepo, f.messaging, 0)
	return f
}

func (f *fixture) addUser(t *testing.T, id, name, role string) *entity.User {
	t.Helper()
	now := time.Now()
	u := &entity.User{
		ID:          id,
		Email:       id + "@alima.test",
		DisplayName: name,
		PhotoURL:    "https://cdn.alima.test/" + id + ".png",
		Role:        role,
		Status:      entity.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u
}
