package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

func dispatch(from, to, text string, at time.Time) *repository.MessageDispatch {
	id := entity.ConversationID(from, to)
	return &repository.MessageDispatch{
		Conversation: &entity.Conversation{
			ID:            id,
			Participants:  entity.ConversationParticipants(from, to),
			LastMessage:   text,
			LastSenderID:  from,
			LastMessageAt: at,
			CreatedAt:     at,
			UpdatedAt:     at,
		},
		Message: &entity.Message{
			ConversationID: id,
			SenderID:       from,
			ReceiverID:     to,
			Type:           entity.MessageTypeText,
			Text:           text,
			CreatedAt:      at,
		},
		Notification: &entity.Notification{
			UserID:    to,
			Type:      entity.NotificationMessage,
			CreatedAt: at,
		},
	}
}

func TestDispatchCreatesThenIncrements(t *testing.T) {
	store := NewStore()
	repo := NewConversationRepository(store)
	ctx := context.Background()
	now := time.Now()

	conv, created, err := repo.Dispatch(ctx, dispatch("u1", "u2", "hi", now))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "u1_u2", conv.ID)
	assert.Equal(t, 1, conv.UnreadFor("u2"))
	assert.Equal(t, 0, conv.UnreadFor("u1"))

	conv, created, err = repo.Dispatch(ctx, dispatch("u1", "u2", "again", now.Add(time.Second)))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 2, conv.UnreadFor("u2"))
	assert.Equal(t, "again", conv.LastMessage)

	conv, _, err = repo.Dispatch(ctx, dispatch("u2", "u1", "reply", now.Add(2*time.Second)))
	require.NoError(t, err)
	assert.Equal(t, 2, conv.UnreadFor("u2"))
	assert.Equal(t, 1, conv.UnreadFor("u1"))

	msgs, err := repo.ListMessages(ctx, "u1_u2", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "hi", msgs[0].Text)
	assert.Equal(t, "reply", msgs[2].Text)

	unread, err := NewNotificationRepository(store).CountUnread(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)
}

func TestMarkMessageReadIsMonotonic(t *testing.T) {
	store := NewStore()
	repo := NewConversationRepository(store)
	ctx := context.Background()

	d := dispatch("u1", "u2", "hi", time.Now())
	_, _, err := repo.Dispatch(ctx, d)
	require.NoError(t, err)

	_, err = repo.MarkMessageRead(ctx, d.Message.ID, "u1")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	changed, err := repo.MarkMessageRead(ctx, d.Message.ID, "u2")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkMessageRead(ctx, d.Message.ID, "u2")
	require.NoError(t, err)
	assert.False(t, changed)

	conv, err := repo.GetByID(ctx, "u1_u2")
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadFor("u2"))
}

func TestMarkConversationReadAndRecount(t *testing.T) {
	store := NewStore()
	repo := NewConversationRepository(store)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		_, _, err := repo.Dispatch(ctx, dispatch("u1", "u2", "m", now.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}
	_, _, err := repo.Dispatch(ctx, dispatch("u2", "u1", "r", now.Add(5*time.Second)))
	require.NoError(t, err)

	n, err := repo.MarkConversationRead(ctx, "u1_u2", "u2")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := repo.CountUnreadMessages(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Simulate drift and repair it.
	store.mu.Lock()
	store.conversations["u1_u2"].UnreadCount["u1"] = 7
	store.mu.Unlock()

	conv, err := repo.RecountUnread(ctx, "u1_u2")
	require.NoError(t, err)
	assert.Equal(t, 1, conv.UnreadFor("u1"))
	assert.Equal(t, 0, conv.UnreadFor("u2"))

	_, err = repo.MarkConversationRead(ctx, "u1_u2", "stranger")
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestWatchDeliversInitialAndUpdates(t *testing.T) {
	store := NewStore()
	repo := NewConversationRepository(store)
	ctx := context.Background()

	stream, err := repo.WatchUnreadMessages(ctx, "u2")
	require.NoError(t, err)
	defer stream.Stop()

	snap, err := stream.Next()
	require.NoError(t, err)
	assert.Empty(t, snap.Items)

	d := dispatch("u1", "u2", "hi", time.Now())
	_, _, err = repo.Dispatch(ctx, d)
	require.NoError(t, err)

	snap, err = stream.Next()
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "u2", snap.Items[0].ReceiverID)

	// A message for someone else does not match but still yields a result set
	// that excludes it.
	_, _, err = repo.Dispatch(ctx, dispatch("u1", "u3", "other", time.Now()))
	require.NoError(t, err)
	snap, err = stream.Next()
	require.NoError(t, err)
	for _, m := range snap.Items {
		assert.Equal(t, "u2", m.ReceiverID)
	}

	stream.Stop()
	_, err = stream.Next()
	assert.ErrorIs(t, err, repository.ErrStreamStopped)
}

func TestWatchStopsWithContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := NewNotificationRepository(store).WatchByUser(ctx, "u1", 20)
	require.NoError(t, err)
	_, err = stream.Next()
	require.NoError(t, err)

	cancel()
	_, err = stream.Next()
	assert.ErrorIs(t, err, repository.ErrStreamStopped)
}

func TestServiceListFiltersAndPages(t *testing.T) {
	store := NewStore()
	repo := NewServiceRepository(store)
	ctx := context.Background()
	base := time.Now()

	for i, cat := range []string{"cleaning", "cleaning", "tutoring"} {
		require.NoError(t, repo.Create(ctx, &entity.Service{
			ProviderID: "p1",
			Title:      cat,
			Category:   cat,
			Status:     entity.ServiceStatusActive,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	items, total, err := repo.List(ctx, repository.ServiceFilter{Category: "cleaning"}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 1)
	assert.Equal(t, base.Add(time.Minute).Unix(), items[0].CreatedAt.Unix())

	items, _, err = repo.List(ctx, repository.ServiceFilter{}, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, _, err = repo.List(ctx, repository.ServiceFilter{Category: "tutoring"}, 1, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, repo.AddRating(ctx, items[0].ID, 4))
	require.NoError(t, repo.AddRating(ctx, items[0].ID, 5))
	svc, err := repo.GetByID(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, svc.ReviewCount)
	assert.InDelta(t, 4.5, svc.Rating(), 0.001)
}
