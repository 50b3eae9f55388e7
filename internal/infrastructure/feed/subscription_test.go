package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alima/internal/adapter/repository/memory"
	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]*entity.Notification
}

func (r *recorder) record(items []*entity.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, items)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() []*entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func notificationSource(repo repository.NotificationRepository, userID string) Source[*entity.Notification] {
	return func(ctx context.Context, limit int) (repository.SnapshotStream[*entity.Notification], error) {
		return repo.WatchByUser(ctx, userID, limit)
	}
}

func TestSubscriptionDeliversInitialAndChanges(t *testing.T) {
	repo := memory.NewNotificationRepository(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entity.Notification{UserID: "u1", Type: entity.NotificationMessage, CreatedAt: time.Now()}))

	rec := &recorder{}
	sub := New(Config[*entity.Notification]{
		Name:       "notifications",
		Source:     notificationSource(repo, "u1"),
		OnSnapshot: rec.record,
	})
	require.NoError(t, sub.Start(ctx))
	defer sub.Stop()

	assert.True(t, sub.Active())
	require.Equal(t, 1, rec.count())
	assert.Len(t, rec.last(), 1)

	require.NoError(t, repo.Create(ctx, &entity.Notification{UserID: "u1", Type: entity.NotificationReview, CreatedAt: time.Now()}))
	assert.Eventually(t, func() bool { return len(rec.last()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Len(t, sub.Items(), 2)
}

func TestSubscriptionFilterAndLimit(t *testing.T) {
	repo := memory.NewNotificationRepository(memory.NewStore())
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 5; i++ {
		typ := entity.NotificationMessage
		if i%2 == 0 {
			typ = entity.NotificationReview
		}
		require.NoError(t, repo.Create(ctx, &entity.Notification{UserID: "u1", Type: typ, CreatedAt: base.Add(time.Duration(i) * time.Second)}))
	}

	sub := New(Config[*entity.Notification]{
		Source: notificationSource(repo, "u1"),
		Filter: func(n *entity.Notification) bool { return n.Type == entity.NotificationReview },
		Limit:  Unlimited,
	})
	require.NoError(t, sub.Start(ctx))
	defer sub.Stop()

	items := sub.Items()
	require.Len(t, items, 3)
	for _, n := range items {
		assert.Equal(t, entity.NotificationReview, n.Type)
	}

	limited := New(Config[*entity.Notification]{
		Source: notificationSource(repo, "u1"),
		Limit:  2,
	})
	require.NoError(t, limited.Start(ctx))
	defer limited.Stop()
	assert.Len(t, limited.Items(), 2)
}

func TestSubscriptionStopSilencesCallbacks(t *testing.T) {
	repo := memory.NewNotificationRepository(memory.NewStore())
	ctx := context.Background()

	rec := &recorder{}
	sub := New(Config[*entity.Notification]{
		Source:     notificationSource(repo, "u1"),
		OnSnapshot: rec.record,
	})
	require.NoError(t, sub.Start(ctx))
	sub.Stop()
	calls := rec.count()

	require.NoError(t, repo.Create(ctx, &entity.Notification{UserID: "u1", Type: entity.NotificationMessage, CreatedAt: time.Now()}))
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, calls, rec.count())
	assert.False(t, sub.Active())
}

type failingStream struct {
	first   *repository.Snapshot[*entity.Notification]
	calls   int
	err     error
	stopped atomic.Int32
}

func (s *failingStream) Next() (*repository.Snapshot[*entity.Notification], error) {
	s.calls++
	if s.calls == 1 {
		return s.first, nil
	}
	return nil, s.err
}

func (s *failingStream) Stop() { s.stopped.Add(1) }

func TestSubscriptionErrorKeepsLastItems(t *testing.T) {
	boom := errors.New("permission denied")
	stream := &failingStream{
		first: &repository.Snapshot[*entity.Notification]{Items: []*entity.Notification{{ID: "n1", UserID: "u1"}}},
		err:   boom,
	}

	sub := New(Config[*entity.Notification]{
		Source: func(ctx context.Context, limit int) (repository.SnapshotStream[*entity.Notification], error) {
			return stream, nil
		},
	})
	require.NoError(t, sub.Start(context.Background()))

	assert.Eventually(t, func() bool { return !sub.Active() }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, sub.Err(), boom)
	require.Len(t, sub.Items(), 1)
	assert.Equal(t, "n1", sub.Items()[0].ID)
	assert.EqualValues(t, 1, stream.stopped.Load(), "stream released on error")

	sub.Stop()
}

func TestSubscriptionStartFailure(t *testing.T) {
	boom := errors.New("unavailable")
	sub := New(Config[*entity.Notification]{
		Source: func(ctx context.Context, limit int) (repository.SnapshotStream[*entity.Notification], error) {
			return nil, boom
		},
	})

	assert.ErrorIs(t, sub.Start(context.Background()), boom)
	assert.False(t, sub.Active())
	assert.ErrorIs(t, sub.Err(), boom)
}

func TestSubscriptionRestartReplacesGeneration(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewNotificationRepository(store)
	ctx := context.Background()

	userID := "u1"
	var mu sync.Mutex
	rec := &recorder{}
	sub := New(Config[*entity.Notification]{
		Source: func(ctx context.Context, limit int) (repository.SnapshotStream[*entity.Notification], error) {
			mu.Lock()
			defer mu.Unlock()
			return repo.WatchByUser(ctx, userID, limit)
		},
		OnSnapshot: rec.record,
	})
	require.NoError(t, sub.Start(ctx))

	mu.Lock()
	userID = "u2"
	mu.Unlock()
	require.NoError(t, sub.Start(ctx))
	defer sub.Stop()

	require.NoError(t, repo.Create(ctx, &entity.Notification{UserID: "u1", Type: entity.NotificationMessage, CreatedAt: time.Now()}))
	require.NoError(t, repo.Create(ctx, &entity.Notification{UserID: "u2", Type: entity.NotificationMessage, CreatedAt: time.Now()}))

	assert.Eventually(t, func() bool { return len(rec.last()) == 1 }, time.Second, 5*time.Millisecond)
	for _, n := range sub.Items() {
		assert.Equal(t, "u2", n.UserID)
	}
}
