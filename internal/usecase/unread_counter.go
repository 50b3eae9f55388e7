package usecase

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/internal/infrastructure/feed"
	"alima/pkg/errors"
)

type UnreadCounts struct {
	Messages      int `json:"messages"`
	Notifications int `json:"notifications"`
	Total         int `json:"total"`
}

// UnreadCounter keeps the unread message and notification counts of one
// user live. Every SetUser starts a new generation; updates from the
// subscriptions of an older generation are discarded.
type UnreadCounter struct {
	convRepo  repository.ConversationRepository
	notifRepo repository.NotificationRepository
	onChange  func(UnreadCounts)

	// emitMu serializes onChange so callers observe counts in order.
	emitMu sync.Mutex

	mu       sync.Mutex
	gen      uint64
	userID   string
	counts   UnreadCounts
	msgSub   *feed.Subscription[*entity.Message]
	notifSub *feed.Subscription[*entity.Notification]
}

// NewUnreadCounter builds an idle counter. onChange may be nil.
func NewUnreadCounter(convRepo repository.ConversationRepository, notifRepo repository.NotificationRepository, onChange func(UnreadCounts)) *UnreadCounter {
	return &UnreadCounter{
		convRepo:  convRepo,
		notifRepo: notifRepo,
		onChange:  onChange,
	}
}

// SetUser tears down the subscriptions of the previous user and opens new
// ones for userID. An empty userID zeroes both counts and opens nothing. It
// returns once both initial counts are known.
func (c *UnreadCounter) SetUser(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.userID = userID
	oldMsg, oldNotif := c.msgSub, c.notifSub
	c.msgSub, c.notifSub = nil, nil
	c.mu.Unlock()

	stopSubscriptions(oldMsg, oldNotif)
	c.update(gen, func(counts *UnreadCounts) { *counts = UnreadCounts{} })

	if userID == "" {
		return nil
	}

	msgSub := feed.New(feed.Config[*entity.Message]{
		Name:  "unread_messages",
		Limit: feed.Unlimited,
		Source: func(ctx context.Context, limit int) (repository.SnapshotStream[*entity.Message], error) {
			return c.convRepo.WatchUnreadMessages(ctx, userID)
		},
		OnSnapshot: func(items []*entity.Message) {
			c.update(gen, func(counts *UnreadCounts) { counts.Messages = len(items) })
		},
	})
	notifSub := feed.New(feed.Config[*entity.Notification]{
		Name:  "unread_notifications",
		Limit: feed.Unlimited,
		Source: func(ctx context.Context, limit int) (repository.SnapshotStream[*entity.Notification], error) {
			return c.notifRepo.WatchUnreadByUser(ctx, userID)
		},
		OnSnapshot: func(items []*entity.Notification) {
			c.update(gen, func(counts *UnreadCounts) { counts.Notifications = len(items) })
		},
	})

	// The subscriptions outlive this call, so they get ctx and not an
	// errgroup context.
	var g errgroup.Group
	g.Go(func() error { return msgSub.Start(ctx) })
	g.Go(func() error { return notifSub.Start(ctx) })
	if err := g.Wait(); err != nil {
		stopSubscriptions(msgSub, notifSub)
		return errors.FromStore(err, "Failed to watch unread counts")
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		stopSubscriptions(msgSub, notifSub)
		return nil
	}
	c.msgSub, c.notifSub = msgSub, notifSub
	c.mu.Unlock()

	return nil
}

// Refresh re-counts both collections with one-shot queries and publishes
// the result immediately, without waiting for the live subscriptions.
func (c *UnreadCounter) Refresh(ctx context.Context) error {
	c.mu.Lock()
	gen, userID := c.gen, c.userID
	c.mu.Unlock()

	if userID == "" {
		return nil
	}

	counts, err := countUnread(ctx, c.convRepo, c.notifRepo, userID)
	if err != nil {
		return err
	}

	c.update(gen, func(current *UnreadCounts) { *current = counts })
	return nil
}

func (c *UnreadCounter) Counts() UnreadCounts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts
}

func (c *UnreadCounter) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Close stops both subscriptions. No onChange call starts after Close
// returns.
func (c *UnreadCounter) Close() {
	c.mu.Lock()
	c.gen++
	msgSub, notifSub := c.msgSub, c.notifSub
	c.msgSub, c.notifSub = nil, nil
	c.mu.Unlock()

	stopSubscriptions(msgSub, notifSub)
}

func (c *UnreadCounter) update(gen uint64, fn func(*UnreadCounts)) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	fn(&c.counts)
	c.counts.Total = c.counts.Messages + c.counts.Notifications
	counts := c.counts
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(counts)
	}
}

func stopSubscriptions(msgSub *feed.Subscription[*entity.Message], notifSub *feed.Subscription[*entity.Notification]) {
	if msgSub != nil {
		msgSub.Stop()
	}
	if notifSub != nil {
		notifSub.Stop()
	}
}

// countUnread runs both one-shot counts in parallel.
func countUnread(ctx context.Context, convRepo repository.ConversationRepository, notifRepo repository.NotificationRepository, userID string) (UnreadCounts, error) {
	var counts UnreadCounts

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := convRepo.CountUnreadMessages(gctx, userID)
		counts.Messages = n
		return err
	})
	g.Go(func() error {
		n, err := notifRepo.CountUnread(gctx, userID)
		counts.Notifications = n
		return err
	})
	if err := g.Wait(); err != nil {
		return UnreadCounts{}, errors.FromStore(err, "Failed to count unread items")
	}

	counts.Total = counts.Messages + counts.Notifications
	return counts, nil
}
