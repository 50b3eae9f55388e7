// Package memory is an in-process document store with the same query and
// live-query semantics as the Firestore repositories. It backs local
// development (STORE_DRIVER=memory) and the use-case tests.
package memory

import (
	"context"
	"sync"
	"time"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
)

type Store struct {
	mu sync.RWMutex

	users         map[string]*entity.User
	services      map[string]*entity.Service
	conversations map[string]*entity.Conversation
	messages      map[string]*entity.Message
	notifications map[string]*entity.Notification
	transactions  map[string]*entity.Transaction
	payments      map[string]*entity.PaymentRequest
	reviews       map[string]*entity.Review
	announcements map[string]*entity.PlatformNotification
	applications  map[string]*entity.ServiceApplication

	lmu       sync.Mutex
	nextID    int
	listeners map[string]map[int]func()

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]*entity.User),
		services:      make(map[string]*entity.Service),
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string]*entity.Message),
		notifications: make(map[string]*entity.Notification),
		transactions:  make(map[string]*entity.Transaction),
		payments:      make(map[string]*entity.PaymentRequest),
		reviews:       make(map[string]*entity.Review),
		announcements: make(map[string]*entity.PlatformNotification),
		applications:  make(map[string]*entity.ServiceApplication),
		listeners:     make(map[string]map[int]func()),
		now:           time.Now,
	}
}

// update runs fn under the write lock and then wakes every live query on the
// touched collections.
func (s *Store) update(fn func() error, collections ...string) error {
	s.mu.Lock()
	err := fn()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	for _, c := range collections {
		s.notify(c)
	}
	return nil
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

func (s *Store) listen(collection string, fn func()) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	s.nextID++
	id := s.nextID
	if s.listeners[collection] == nil {
		s.listeners[collection] = make(map[int]func())
	}
	s.listeners[collection][id] = fn

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners[collection], id)
	}
}

func (s *Store) notify(collection string) {
	s.lmu.Lock()
	fns := make([]func(), 0, len(s.listeners[collection]))
	for _, fn := range s.listeners[collection] {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// stream is a live query over one collection. Only the latest pending
// snapshot is kept; a slow reader skips intermediate result sets, the same
// way Firestore coalesces snapshots.
type stream[T any] struct {
	ctx     context.Context
	cancel  context.CancelFunc
	updates chan *repository.Snapshot[T]

	pushMu   sync.Mutex
	stop     sync.Once
	unlisten func()
}

func watch[T any](ctx context.Context, s *Store, collection string, query func() []T) repository.SnapshotStream[T] {
	ctx, cancel := context.WithCancel(ctx)
	st := &stream[T]{
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan *repository.Snapshot[T], 1),
	}

	refresh := func() {
		st.pushMu.Lock()
		defer st.pushMu.Unlock()
		if ctx.Err() != nil {
			return
		}

		var snap *repository.Snapshot[T]
		s.read(func() {
			snap = &repository.Snapshot[T]{Items: query(), ReadTime: s.now()}
		})

		select {
		case <-st.updates:
		default:
		}
		st.updates <- snap
	}

	st.unlisten = s.listen(collection, refresh)
	context.AfterFunc(ctx, st.Stop)
	refresh()

	return st
}

func (st *stream[T]) Next() (*repository.Snapshot[T], error) {
	if st.ctx.Err() != nil {
		return nil, repository.ErrStreamStopped
	}
	select {
	case snap := <-st.updates:
		return snap, nil
	case <-st.ctx.Done():
		return nil, repository.ErrStreamStopped
	}
}

func (st *stream[T]) Stop() {
	st.stop.Do(func() {
		st.cancel()
		st.unlisten()
	})
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	return limitSlice(items, limit)
}
