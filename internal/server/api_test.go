package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"bid_market/internal/domain/entity"
	"bid_market/pkg/rest"
	"bid_market/pkg/tests"
)

func authHeader(userID string) http.Header {
	return http.Header{"X-User-Id": []string{userID}}
}

// Full flow over a real HTTP server: seller creates a listing, a buyer
// places a bid, the seller's listings view shows the unread badge, and
// opening the bid list clears it.
func TestBidFlowOverHTTP(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	f := newFixture()

	ts := httptest.NewServer(f.router)
	defer ts.Close()

	client := tests.NewAPIClient(ts.URL, nil)

	var created rest.Listing
	resp, err := client.Post(ctx, "/v1/listings/", authHeader("seller-1"), rest.CreateListingRequest{
		Title:     "Road bike",
		Price:     45000,
		Status:    "active",
		AllowBids: true,
		MinBid:    1000,
	}, &created, nil)
	rq.NoError(err)
	rq.Equal(http.StatusCreated, resp.StatusCode)
	rq.Equal("seller-1", created.SellerID)

	var bid rest.Bid
	resp, err = client.Post(ctx, "/v1/listings/"+created.ID+"/bids/", authHeader("buyer-1"),
		rest.PlaceBidRequest{Amount: 5000}, &bid, nil)
	rq.NoError(err)
	rq.Equal(http.StatusCreated, resp.StatusCode)
	rq.Equal(int64(5000), bid.Amount)
	rq.Len(f.pub.events, 1)

	// The sellers view aggregates from the store; mirror the bid there.
	// The seller had seen the listing before the bid, so the stored
	// marker sits at zero.
	f.listings.stats = []entity.ListingStats{{
		Listing:    *f.listings.listings[created.ID],
		BidCount:   1,
		HighestBid: &bid.Amount,
	}}
	f.markers.upserts = []entity.ReadMarker{{
		UserID:    "seller-1",
		ListingID: created.ID,
	}}

	var listings []rest.ListingWithStats
	resp, err = client.Get(ctx, "/v1/listings/", authHeader("seller-1"), &listings, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Len(listings, 1)
	rq.Equal(1, listings[0].Unread)

	var bids rest.BidList
	resp, err = client.Get(ctx, "/v1/listings/"+created.ID+"/bids/", authHeader("seller-1"), &bids, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Len(bids.Bids, 1)

	resp, err = client.Get(ctx, "/v1/listings/", authHeader("seller-1"), &listings, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(0, listings[0].Unread)
}

func TestBidRejectionOverHTTP(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	f := newFixture()

	ts := httptest.NewServer(f.router)
	defer ts.Close()

	client := tests.NewAPIClient(ts.URL, nil)

	f.listings.listings["lst-1"] = activeListing("lst-1", "seller-1", 1000)

	var errBody rest.Error
	resp, err := client.Post(ctx, "/v1/listings/lst-1/bids/", authHeader("buyer-1"),
		rest.PlaceBidRequest{Amount: 500}, nil, &errBody)
	rq.NoError(err)
	rq.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	rq.Equal("BidBelowMinimum", errBody.Code)
}
