package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"bid_market/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const TaskTypeReadMarkerUpsert = "readmarker:upsert"

// readMarkerStore is the synchronous side of the marker write-through.
type readMarkerStore interface {
	Upsert(ctx context.Context, marker entity.ReadMarker) error
}

// NewReadMarkerTask builds the asynq task for one marker upsert.
func NewReadMarkerTask(marker entity.ReadMarker) (*asynq.Task, error) {
	payload, err := json.Marshal(marker)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return asynq.NewTask(TaskTypeReadMarkerUpsert, payload), nil
}

// MarkerEnqueuer implements offer.MarkerStore by enqueueing the upsert
// instead of hitting the database on the request path. Enqueue failure
// propagates to the tracker, which logs and swallows it.
type MarkerEnqueuer struct {
	client *asynq.Client
	queue  string
}

func NewMarkerEnqueuer(client *asynq.Client, queue string) *MarkerEnqueuer {
	return &MarkerEnqueuer{
		client: client,
		queue:  queue,
	}
}

func (e *MarkerEnqueuer) Upsert(ctx context.Context, marker entity.ReadMarker) error {
	task, err := NewReadMarkerTask(marker)
	if err != nil {
		return err
	}

	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(e.queue)); err != nil {
		return fmt.Errorf("asynq.Enqueue: %w", err)
	}

	return nil
}

// ReadMarkerHandler processes the upsert tasks. The repository merges
// with GREATEST, so redelivery and reordering are harmless.
type ReadMarkerHandler struct {
	markers readMarkerStore
}

func NewReadMarkerHandler(markers readMarkerStore) *ReadMarkerHandler {
	return &ReadMarkerHandler{markers: markers}
}

func (h *ReadMarkerHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var marker entity.ReadMarker
	if err := json.Unmarshal(task.Payload(), &marker); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	if err := h.markers.Upsert(ctx, marker); err != nil {
		readMarkerUpserts.WithLabelValues("error").Inc()
		return fmt.Errorf("markers.Upsert: %w", err)
	}

	readMarkerUpserts.WithLabelValues("ok").Inc()

	return nil
}
