package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bid_market/internal/domain/entity"
	"bid_market/internal/worker"
)

type markerStoreFake struct {
	upserts []entity.ReadMarker
	err     error
}

func (f *markerStoreFake) Upsert(_ context.Context, marker entity.ReadMarker) error {
	if f.err != nil {
		return f.err
	}

	f.upserts = append(f.upserts, marker)
	return nil
}

func TestReadMarkerHandler(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	marker := entity.ReadMarker{
		UserID:        "seller-1",
		ListingID:     "l-1",
		LastSeenCount: 5,
		LastSeenAt:    time.Now().UTC(),
	}

	task, err := worker.NewReadMarkerTask(marker)
	rq.NoError(err)
	rq.Equal(worker.TaskTypeReadMarkerUpsert, task.Type())

	store := &markerStoreFake{}
	handler := worker.NewReadMarkerHandler(store)

	rq.NoError(handler.Handle(ctx, task))
	rq.Len(store.upserts, 1)
	rq.Equal("seller-1", store.upserts[0].UserID)
	rq.Equal("l-1", store.upserts[0].ListingID)
	rq.Equal(5, store.upserts[0].LastSeenCount)

	// Redelivery of the same task is harmless; the repository merge is
	// monotonic.
	rq.NoError(handler.Handle(ctx, task))
	rq.Len(store.upserts, 2)
}

func TestReadMarkerHandlerStoreError(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	task, err := worker.NewReadMarkerTask(entity.ReadMarker{UserID: "seller-1", ListingID: "l-1"})
	rq.NoError(err)

	handler := worker.NewReadMarkerHandler(&markerStoreFake{err: errors.New("db down")})
	rq.Error(handler.Handle(ctx, task))
}
