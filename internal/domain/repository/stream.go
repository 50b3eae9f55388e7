package repository

import (
	"errors"
	"time"
)

// ErrStreamStopped is returned by SnapshotStream.Next after Stop was called
// or the stream's context was cancelled.
var ErrStreamStopped = errors.New("snapshot stream stopped")

// Snapshot is the complete ordered result set of a live query at ReadTime.
type Snapshot[T any] struct {
	Items    []T
	ReadTime time.Time
}

// SnapshotStream is a live query. The first Next returns the initial result
// set; every later Next blocks until a matching document is inserted,
// updated or deleted and returns the recomputed result set.
type SnapshotStream[T any] interface {
	Next() (*Snapshot[T], error)
	Stop()
}
