package realtime

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"bid_market/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// BidChannel is the pub/sub channel carrying bid-insert events.
// Delivery to subscribers is at-least-once from the consumer's point
// of view (a reconnect replays nothing but a flaky consumer may see
// duplicates end to end); events carry no dedup key.
const BidChannel = "bids:inserted"

type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) PublishBid(ctx context.Context, ev entity.BidEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := p.rdb.Publish(ctx, BidChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis.Publish: %w", err)
	}

	return nil
}

// DecodeBidEvent parses a raw channel payload.
func DecodeBidEvent(payload string) (entity.BidEvent, error) {
	var ev entity.BidEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return entity.BidEvent{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return ev, nil
}
