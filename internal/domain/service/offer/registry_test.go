package offer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"bid_market/internal/domain/entity"
	"bid_market/internal/domain/service/offer"
)

func TestRegistry(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	registry := offer.NewRegistry(&markerStoreFake{})

	_, ok := registry.Lookup("seller-1")
	rq.False(ok, "no session before first use")

	tracker := registry.For("seller-1")
	rq.Equal("seller-1", tracker.SellerID())

	// Same session on repeated access.
	again := registry.For("seller-1")
	rq.Same(tracker, again)

	found, ok := registry.Lookup("seller-1")
	rq.True(ok)
	rq.Same(tracker, found)

	// Sessions are isolated per seller.
	other := registry.For("seller-2")
	rq.NotSame(tracker, other)

	tracker.Initialize(ctx, []entity.ListingStats{stats("l-1", 2, nil)}, map[string]int{"l-1": 0})
	rq.Equal(2, tracker.Unread("l-1"))
	rq.Equal(0, other.Unread("l-1"))
}
