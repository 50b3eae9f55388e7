package repository

import (
	"context"
	stderrors "errors"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"alima/internal/domain/repository"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

// firestoreStream adapts a QuerySnapshotIterator to the repository stream
// contract. Every snapshot carries the complete ordered result set.
type firestoreStream[E any] struct {
	iter      *firestore.QuerySnapshotIterator
	transform func([]*E) []*E
}

func watchQuery[E any](ctx context.Context, q firestore.Query, transform func([]*E) []*E) repository.SnapshotStream[*E] {
	return &firestoreStream[E]{
		iter:      q.Snapshots(ctx),
		transform: transform,
	}
}

func (s *firestoreStream[E]) Next() (*repository.Snapshot[*E], error) {
	snap, err := s.iter.Next()
	if err != nil {
		if err == iterator.Done || status.Code(err) == codes.Canceled || stderrors.Is(err, context.Canceled) {
			return nil, repository.ErrStreamStopped
		}
		return nil, errors.FromStore(err, "Live query failed")
	}

	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, errors.FromStore(err, "Failed to read snapshot")
	}

	items, err := decodeAll[E](docs)
	if err != nil {
		return nil, err
	}
	if s.transform != nil {
		items = s.transform(items)
	}

	return &repository.Snapshot[*E]{Items: items, ReadTime: snap.ReadTime}, nil
}

func (s *firestoreStream[E]) Stop() {
	s.iter.Stop()
}

func decodeAll[E any](docs []*firestore.DocumentSnapshot) ([]*E, error) {
	items := make([]*E, 0, len(docs))
	for _, doc := range docs {
		var item E
		if err := doc.DataTo(&item); err != nil {
			logger.Error("Failed to parse document %s: %v", doc.Ref.Path, err)
			return nil, errors.Internal("Failed to parse document data", err)
		}
		items = append(items, &item)
	}
	return items, nil
}

func getAll[E any](ctx context.Context, q firestore.Query, message string) ([]*E, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.FromStore(err, message)
	}
	return decodeAll[E](docs)
}

func getDoc[E any](ctx context.Context, ref *firestore.DocumentRef, resource string) (*E, error) {
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound(resource, err)
		}
		return nil, errors.FromStore(err, "Failed to get "+resource)
	}

	var item E
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Internal("Failed to parse "+resource+" data", err)
	}
	return &item, nil
}

// count runs a server-side aggregation so no documents are transferred.
func count(ctx context.Context, q firestore.Query) (int64, error) {
	result, err := q.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, errors.FromStore(err, "Failed to count documents")
	}

	value, ok := result["total"].(*firestorepb.Value)
	if !ok {
		return 0, errors.Internal("Unexpected aggregation result", nil)
	}
	return value.GetIntegerValue(), nil
}

func paginate(q firestore.Query, limit, offset int) firestore.Query {
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func reverse[E any](items []*E) []*E {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// maxTransactionWrites is the Firestore limit on writes in one transaction.
const maxTransactionWrites = 500

// inBatches runs step until a pass handles fewer than size documents and
// returns the total handled. Each pass is its own transaction, so a bulk
// update larger than one transaction is applied in chunks rather than
// atomically.
func inBatches(ctx context.Context, size int, step func(ctx context.Context, limit int) (int, error)) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := step(ctx, size)
		total += n
		if err != nil {
			return total, err
		}
		if n < size {
			return total, nil
		}
	}
}
