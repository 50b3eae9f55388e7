package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alima/internal/domain/entity"
	"alima/pkg/errors"
)

type pushRecorder struct {
	mu    sync.Mutex
	items []interface{}
}

func (r *pushRecorder) push(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, v)
}

func (r *pushRecorder) last() interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return nil
	}
	return r.items[len(r.items)-1]
}

func TestWatchConversationsPushesViews(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a1", "Ayu", entity.RoleClient)
	f.addUser(t, "b2", "Budi", entity.RoleProvider)
	f.addUser(t, "c3", "Citra", entity.RoleClient)
	ctx := context.Background()

	rec := &pushRecorder{}
	sub, err := f.feeds.WatchConversations(ctx, "b2", rec.push)
	require.NoError(t, err)
	defer sub.Stop()

	views, ok := rec.last().([]*ConversationView)
	require.True(t, ok)
	assert.Empty(t, views)

	_, err = f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "Hello"})
	require.NoError(t, err)
	_, err = f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "c3", Text: "Not for budi"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		views, _ := rec.last().([]*ConversationView)
		return len(views) == 1 && views[0].Unread == 1
	}, time.Second, 5*time.Millisecond)

	views, _ = rec.last().([]*ConversationView)
	for _, v := range views {
		assert.True(t, v.HasParticipant("b2"))
	}
}

func TestWatchMessagesRequiresParticipant(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a1", "Ayu", entity.RoleClient)
	f.addUser(t, "b2", "Budi", entity.RoleProvider)
	f.addUser(t, "c3", "Citra", entity.RoleClient)
	ctx := context.Background()

	_, err := f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "Hello"})
	require.NoError(t, err)

	_, err = f.feeds.WatchMessages(ctx, "c3", "a1_b2", (&pushRecorder{}).push)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	rec := &pushRecorder{}
	sub, err := f.feeds.WatchMessages(ctx, "b2", "a1_b2", rec.push)
	require.NoError(t, err)
	defer sub.Stop()

	msgs, ok := rec.last().([]*entity.Message)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hello", msgs[0].Text)
}

func TestWatchUnreadRefresh(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a1", "Ayu", entity.RoleClient)
	f.addUser(t, "b2", "Budi", entity.RoleProvider)
	ctx := context.Background()

	_, err := f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "Hello"})
	require.NoError(t, err)

	rec := &pushRecorder{}
	watcher, err := f.feeds.WatchUnread(ctx, "b2", rec.push)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.Equal(t, UnreadCounts{Messages: 1, Notifications: 1, Total: 2}, rec.last())

	_, err = f.notifications.MarkAllRead(ctx, "b2")
	require.NoError(t, err)
	require.NoError(t, watcher.Refresh(ctx))
	assert.Equal(t, 0, rec.last().(UnreadCounts).Notifications)

	counts, err := f.feeds.UnreadCounts(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Messages)
}
