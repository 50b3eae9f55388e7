// Package feed keeps a live query open and hands every complete result set
// to a callback.
package feed

import (
	"context"
	"errors"
	"sync"

	"alima/internal/domain/repository"
	"alima/internal/infrastructure/metrics"
	"alima/pkg/logger"
)

const (
	DefaultLimit = 20
	// Unlimited disables the result cap. Count feeds use it.
	Unlimited = -1
)

// Source opens the live query behind a subscription. A limit of 0 means no
// cap.
type Source[T any] func(ctx context.Context, limit int) (repository.SnapshotStream[T], error)

type Config[T any] struct {
	// Name labels log lines and metrics.
	Name   string
	Source Source[T]
	// Filter, when set, is re-applied to every snapshot.
	Filter func(T) bool
	// Limit caps the result set. Zero selects DefaultLimit.
	Limit int
	// OnSnapshot receives every result set. It must not call Stop.
	OnSnapshot func(items []T)
}

// Subscription is an explicit handle over one live query. Each Start opens a
// new generation; snapshots that belong to an older generation are dropped.
// On a stream error the last items are kept and the subscription goes
// inactive until the caller starts it again.
type Subscription[T any] struct {
	cfg Config[T]

	mu     sync.Mutex
	gen    uint64
	items  []T
	active bool
	err    error
	stream repository.SnapshotStream[T]
	cancel context.CancelFunc
	done   chan struct{}
}

func New[T any](cfg Config[T]) *Subscription[T] {
	if cfg.Limit == 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Name == "" {
		cfg.Name = "feed"
	}
	return &Subscription[T]{cfg: cfg}
}

// Start replaces any running query and blocks until the initial result set
// has been delivered.
func (s *Subscription[T]) Start(ctx context.Context) error {
	s.Stop()

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	limit := s.cfg.Limit
	if limit < 0 {
		limit = 0
	}

	ctx, cancel := context.WithCancel(ctx)
	stream, err := s.cfg.Source(ctx, limit)
	if err != nil {
		cancel()
		s.fail(gen, err)
		return err
	}

	first, err := stream.Next()
	if err != nil {
		stream.Stop()
		cancel()
		s.fail(gen, err)
		return err
	}

	ready := make(chan struct{})
	done := make(chan struct{})

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		stream.Stop()
		cancel()
		return repository.ErrStreamStopped
	}
	s.stream, s.cancel, s.done = stream, cancel, done
	s.active = true
	s.err = nil
	s.mu.Unlock()

	metrics.IncFeedActive(s.cfg.Name)
	go s.run(gen, stream, first, ready, done)
	<-ready

	return nil
}

func (s *Subscription[T]) run(gen uint64, stream repository.SnapshotStream[T], first *repository.Snapshot[T], ready, done chan struct{}) {
	defer close(done)
	defer metrics.DecFeedActive(s.cfg.Name)

	s.deliver(gen, first)
	close(ready)

	for {
		snap, err := stream.Next()
		if err != nil {
			if errors.Is(err, repository.ErrStreamStopped) {
				return
			}
			// Release the listener now; cancel stays for Stop.
			stream.Stop()
			s.fail(gen, err)
			return
		}
		s.deliver(gen, snap)
	}
}

func (s *Subscription[T]) deliver(gen uint64, snap *repository.Snapshot[T]) {
	items := make([]T, 0, len(snap.Items))
	for _, item := range snap.Items {
		if s.cfg.Filter != nil && !s.cfg.Filter(item) {
			continue
		}
		items = append(items, item)
	}
	if s.cfg.Limit > 0 && len(items) > s.cfg.Limit {
		items = items[:s.cfg.Limit]
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.items = items
	s.mu.Unlock()

	if s.cfg.OnSnapshot != nil {
		s.cfg.OnSnapshot(append([]T(nil), items...))
	}
}

func (s *Subscription[T]) fail(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.active = false
	s.err = err
	metrics.IncFeedError(s.cfg.Name)
	logger.Error("Feed %s stopped: %v", s.cfg.Name, err)
}

// Stop tears down the running query and waits for the delivery goroutine.
// No callback runs after Stop returns.
func (s *Subscription[T]) Stop() {
	s.mu.Lock()
	s.gen++
	stream, cancel, done := s.stream, s.cancel, s.done
	s.stream, s.cancel, s.done = nil, nil, nil
	s.active = false
	s.mu.Unlock()

	if stream == nil {
		return
	}
	stream.Stop()
	cancel()
	<-done
}

// Items returns the last delivered result set.
func (s *Subscription[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

func (s *Subscription[T]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Err returns the error that stopped the last generation, if any.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
