package usecase

import (
	"context"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/internal/infrastructure/feed"
	ws "alima/internal/infrastructure/websocket"
)

// FeedUseCase opens the live queries behind the websocket topics.
type FeedUseCase struct {
	convRepo  repository.ConversationRepository
	notifRepo repository.NotificationRepository
	messaging *MessagingUseCase
	limit     int
}

var _ ws.FeedService = (*FeedUseCase)(nil)

// NewFeedUseCase builds the feed service. limit caps every list feed; 0
// selects feed.DefaultLimit.
func NewFeedUseCase(
	convRepo repository.ConversationRepository,
	notifRepo repository.NotificationRepository,
	messaging *MessagingUseCase,
	limit int,
) *FeedUseCase {
	return &FeedUseCase{
		convRepo:  convRepo,
		notifRepo: notifRepo,
		messaging: messaging,
		limit:     limit,
	}
}

func (uc *FeedUseCase) WatchConversations(ctx context.Context, userID string, push func(items interface{})) (ws.Stopper, error) {
	sub := feed.New(feed.Config[*entity.Conversation]{
		Name:  "conversations",
		Limit: uc.limit,
		Source: func(ctx context.Context, limit int) (repository.SnapshotStream[*entity.Conversation], error) {
			return uc.convRepo.WatchByParticipant(ctx, userID, limit)
		},
		Filter: func(c *entity.Conversation) bool { return c.HasParticipant(userID) },
		OnSnapshot: func(items []*entity.Conversation) {
			push(uc.messaging.views(ctx, userID, items))
		},
	})
	if err := sub.Start(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

// WatchMessages requires userID to take part in the conversation.
func (uc *FeedUseCase) WatchMessages(ctx context.Context, userID, conversationID string, push func(items interface{})) (ws.Stopper, error) {
	if _, err := uc.messaging.participantConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	sub := feed.New(feed.Config[*entity.Message]{
		Name:  "messages",
		Limit: uc.limit,
		Source: func(ctx context.Context, limit int) (repository.SnapshotStream[*entity.Message], error) {
			return uc.convRepo.WatchMessages(ctx, conversationID, limit)
		},
		Filter: func(m *entity.Message) bool { return m.ConversationID == conversationID },
		OnSnapshot: func(items []*entity.Message) {
			push(items)
		},
	})
	if err := sub.Start(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

func (uc *FeedUseCase) WatchNotifications(ctx context.Context, userID string, push func(items interface{})) (ws.Stopper, error) {
	sub := feed.New(feed.Config[*entity.Notification]{
		Name:  "notifications",
		Limit: uc.limit,
		Source: func(ctx context.Context, limit int) (repository.SnapshotStream[*entity.Notification], error) {
			return uc.notifRepo.WatchByUser(ctx, userID, limit)
		},
		Filter: func(n *entity.Notification) bool { return n.UserID == userID },
		OnSnapshot: func(items []*entity.Notification) {
			push(items)
		},
	})
	if err := sub.Start(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

func (uc *FeedUseCase) WatchUnread(ctx context.Context, userID string, push func(counts interface{})) (ws.UnreadWatcher, error) {
	counter := NewUnreadCounter(uc.convRepo, uc.notifRepo, func(counts UnreadCounts) {
		push(counts)
	})
	if err := counter.SetUser(ctx, userID); err != nil {
		counter.Close()
		return nil, err
	}
	return unreadWatcher{counter}, nil
}

// UnreadCounts is the one-shot form of the unread feed.
func (uc *FeedUseCase) UnreadCounts(ctx context.Context, userID string) (UnreadCounts, error) {
	return countUnread(ctx, uc.convRepo, uc.notifRepo, userID)
}

type unreadWatcher struct {
	*UnreadCounter
}

func (w unreadWatcher) Stop() {
	w.Close()
}
