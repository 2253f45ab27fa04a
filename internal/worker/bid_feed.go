package worker

import (
	"context"

	"github.com/redis/go-redis/v9"

	"bid_market/internal/domain/entity"
	"bid_market/internal/domain/service/offer"
	"bid_market/internal/infrastructure/realtime"
	"bid_market/pkg/logx"
)

// BidFeed consumes the realtime bid channel and routes each event to
// the owning seller's tracker. Sellers without a live session are
// skipped; they reconcile from the stored markers on next load.
//
// High-value bids are additionally forwarded to the alerts channel for
// the ops notifier.
type BidFeed struct {
	rdb      *redis.Client
	registry *offer.Registry
	alerts   chan<- BidAlert

	alertThreshold int64
}

// BidAlert is what the notifier receives for bids worth flagging.
type BidAlert struct {
	Event entity.BidEvent
}

func NewBidFeed(rdb *redis.Client, registry *offer.Registry, alerts chan<- BidAlert) *BidFeed {
	return &BidFeed{
		rdb:      rdb,
		registry: registry,
		alerts:   alerts,
	}
}

// WithAlertThreshold sets the amount (cents) from which a bid is
// forwarded to the alerts channel. Zero disables alerts.
func (f *BidFeed) WithAlertThreshold(amount int64) *BidFeed {
	f.alertThreshold = amount
	return f
}

func (f *BidFeed) Run(ctx context.Context) error {
	sub := f.rdb.Subscribe(ctx, realtime.BidChannel)
	defer sub.Close()

	logger(ctx).Info("bid feed started", "channel", realtime.BidChannel)

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("bid feed stopped")
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				logger(ctx).Info("bid feed channel closed")
				return nil
			}
			f.handle(ctx, msg.Payload)
		}
	}
}

func (f *BidFeed) handle(ctx context.Context, payload string) {
	ev, err := realtime.DecodeBidEvent(payload)
	if err != nil {
		logger(ctx).Error("failed to decode bid event", logx.Error(err))
		bidEventsDropped.Inc()
		return
	}

	bidEventsConsumed.Inc()

	if tracker, ok := f.registry.Lookup(ev.SellerID); ok {
		tracker.OnBidInserted(ctx, ev)
	}

	if f.alerts != nil && f.alertThreshold > 0 && ev.Amount >= f.alertThreshold {
		select {
		case f.alerts <- BidAlert{Event: ev}:
		default:
			// Alerting is best effort, never back-pressure the feed.
			logger(ctx).Warn("alert channel full, dropping alert", "listing-id", ev.ListingID)
		}
	}
}
