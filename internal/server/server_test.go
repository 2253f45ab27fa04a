package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"bid_market/internal/domain"
	"bid_market/internal/domain/entity"
	"bid_market/internal/domain/service/offer"
	"bid_market/pkg/errcodes"
	"bid_market/pkg/rest"
)

type listingStoreFake struct {
	listings map[string]*entity.Listing
	stats    []entity.ListingStats
}

func (f *listingStoreFake) Create(_ context.Context, listing *entity.Listing) error {
	f.listings[listing.ID] = listing
	return nil
}

func (f *listingStoreFake) GetByID(_ context.Context, id string) (*entity.Listing, error) {
	listing, ok := f.listings[id]
	if !ok {
		return nil, domain.NewError(errcodes.ListingNotFound, "listing not found")
	}
	return listing, nil
}

func (f *listingStoreFake) ListBySeller(_ context.Context, sellerID string) ([]entity.ListingStats, error) {
	var out []entity.ListingStats
	for _, ls := range f.stats {
		if ls.SellerID == sellerID {
			out = append(out, ls)
		}
	}
	return out, nil
}

func (f *listingStoreFake) Update(_ context.Context, listing *entity.Listing) error {
	f.listings[listing.ID] = listing
	return nil
}

type bidStoreFake struct {
	bids map[string]*entity.Bid
}

func (f *bidStoreFake) Create(_ context.Context, bid *entity.Bid) error {
	f.bids[bid.ID] = bid
	return nil
}

func (f *bidStoreFake) GetByID(_ context.Context, id string) (*entity.Bid, error) {
	bid, ok := f.bids[id]
	if !ok {
		return nil, domain.NewError(errcodes.BidNotFound, "bid not found")
	}
	return bid, nil
}

func (f *bidStoreFake) ListByListing(_ context.Context, listingID string) ([]entity.Bid, error) {
	var out []entity.Bid
	for _, b := range f.bids {
		if b.ListingID == listingID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type publisherFake struct {
	events []entity.BidEvent
}

func (f *publisherFake) PublishBid(_ context.Context, ev entity.BidEvent) error {
	f.events = append(f.events, ev)
	return nil
}

type markerStoreFake struct {
	upserts []entity.ReadMarker
}

func (f *markerStoreFake) Upsert(_ context.Context, marker entity.ReadMarker) error {
	f.upserts = append(f.upserts, marker)
	return nil
}

func (f *markerStoreFake) GetForListings(
	_ context.Context,
	userID string,
	_ []string,
) (map[string]int, error) {
	out := map[string]int{}
	for _, m := range f.upserts {
		if m.UserID == userID {
			out[m.ListingID] = m.LastSeenCount
		}
	}
	return out, nil
}

type conversationStoreFake struct {
	createErr error
	postErr   error

	messages []entity.Message
}

func (f *conversationStoreFake) GetOrCreate(
	_ context.Context,
	listingID, sellerID, buyerID string,
) (entity.Conversation, error) {
	if f.createErr != nil {
		return entity.Conversation{}, f.createErr
	}

	return entity.Conversation{
		ID:        "conv-1",
		ListingID: listingID,
		SellerID:  sellerID,
		BuyerID:   buyerID,
	}, nil
}

func (f *conversationStoreFake) PostMessage(
	_ context.Context,
	conversationID, senderID, body string,
) (entity.Message, error) {
	if f.postErr != nil {
		return entity.Message{}, f.postErr
	}

	msg := entity.Message{ConversationID: conversationID, SenderID: senderID, Body: body}
	f.messages = append(f.messages, msg)
	return msg, nil
}

type fixture struct {
	listings *listingStoreFake
	bids     *bidStoreFake
	pub      *publisherFake
	markers  *markerStoreFake
	convs    *conversationStoreFake
	sessions *offer.Registry
	router   chi.Router
}

func newFixture() *fixture {
	f := &fixture{
		listings: &listingStoreFake{listings: map[string]*entity.Listing{}},
		bids:     &bidStoreFake{bids: map[string]*entity.Bid{}},
		pub:      &publisherFake{},
		markers:  &markerStoreFake{},
		convs:    &conversationStoreFake{},
	}

	f.sessions = offer.NewRegistry(f.markers)

	srv := NewServer(
		NewListingServer(f.listings, f.markers, f.sessions),
		NewBidServer(f.listings, f.bids, f.pub, f.sessions, offer.NewMessenger(f.convs)),
	)

	router := chi.NewRouter()
	router.Use(Auth)
	srv.RegisterRoutes(router)
	f.router = router

	return f
}

func (f *fixture) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func activeListing(id, sellerID string, minBid int64) *entity.Listing {
	return &entity.Listing{
		ID:        id,
		SellerID:  sellerID,
		Title:     "Road bike",
		Price:     45000,
		Status:    entity.ListingStatusActive,
		AllowBids: true,
		MinBid:    minBid,
	}
}

func TestAuthRequired(t *testing.T) {
	rq := require.New(t)
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/v1/listings/", "", nil)
	rq.Equal(http.StatusUnauthorized, rec.Code)

	var body rest.Error
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	rq.Equal("AuthRequired", body.Code)
}

func TestPlaceBid(t *testing.T) {
	rq := require.New(t)
	f := newFixture()

	f.listings.listings["l-1"] = activeListing("l-1", "seller-1", 1000)

	rec := f.do(t, http.MethodPost, "/v1/listings/l-1/bids/", "bidder-1",
		rest.PlaceBidRequest{Amount: 5000})
	rq.Equal(http.StatusCreated, rec.Code)

	var bid rest.Bid
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &bid))
	rq.Equal("l-1", bid.ListingID)
	rq.Equal("bidder-1", bid.BidderID)
	rq.Equal(int64(5000), bid.Amount)

	rq.Len(f.pub.events, 1)
	rq.Equal("seller-1", f.pub.events[0].SellerID)
	rq.Len(f.bids.bids, 1)
}

func TestPlaceBidRejections(t *testing.T) {
	f := newFixture()

	f.listings.listings["l-1"] = activeListing("l-1", "seller-1", 1000)

	paused := activeListing("l-2", "seller-1", 0)
	paused.Status = entity.ListingStatusPaused
	f.listings.listings["l-2"] = paused

	noBids := activeListing("l-3", "seller-1", 0)
	noBids.AllowBids = false
	f.listings.listings["l-3"] = noBids

	testCases := []struct {
		name     string
		path     string
		userID   string
		amount   int64
		wantCode int
		wantErr  string
	}{
		{
			name:     "below minimum",
			path:     "/v1/listings/l-1/bids/",
			userID:   "bidder-1",
			amount:   500,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "BidBelowMinimum",
		},
		{
			name:     "own listing",
			path:     "/v1/listings/l-1/bids/",
			userID:   "seller-1",
			amount:   5000,
			wantCode: http.StatusForbidden,
			wantErr:  "OwnListingBid",
		},
		{
			name:     "paused listing",
			path:     "/v1/listings/l-2/bids/",
			userID:   "bidder-1",
			amount:   5000,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "ListingNotBiddable",
		},
		{
			name:     "bids disabled",
			path:     "/v1/listings/l-3/bids/",
			userID:   "bidder-1",
			amount:   5000,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "ListingNotBiddable",
		},
		{
			name:     "unknown listing",
			path:     "/v1/listings/l-404/bids/",
			userID:   "bidder-1",
			amount:   5000,
			wantCode: http.StatusNotFound,
			wantErr:  "ListingNotFound",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			rec := f.do(t, http.MethodPost, tc.path, tc.userID, rest.PlaceBidRequest{Amount: tc.amount})
			rq.Equal(tc.wantCode, rec.Code)

			var body rest.Error
			rq.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
			rq.Equal(tc.wantErr, body.Code)
		})
	}
}

func TestListingsWithUnread(t *testing.T) {
	rq := require.New(t)
	f := newFixture()

	highest := int64(8000)
	f.listings.stats = []entity.ListingStats{{
		Listing:    *activeListing("l-1", "seller-1", 0),
		BidCount:   5,
		HighestBid: &highest,
	}}
	f.markers.upserts = []entity.ReadMarker{{
		UserID:        "seller-1",
		ListingID:     "l-1",
		LastSeenCount: 3,
	}}

	// Marker at 3, count 5: two unread.
	rec := f.do(t, http.MethodGet, "/v1/listings/", "seller-1", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var listings []rest.ListingWithStats
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &listings))
	rq.Len(listings, 1)
	rq.Equal(5, listings[0].Bids)
	rq.Equal(int64(8000), *listings[0].HighestBid)
	rq.Equal(2, listings[0].Unread)
}

func TestBidListMarksSeen(t *testing.T) {
	rq := require.New(t)
	f := newFixture()

	f.listings.listings["l-1"] = activeListing("l-1", "seller-1", 0)
	f.bids.bids["bid-1"] = &entity.Bid{
		ID:        "bid-1",
		ListingID: "l-1",
		BidderID:  "bidder-1",
		Amount:    5000,
		CreatedAt: time.Now(),
	}

	rec := f.do(t, http.MethodGet, "/v1/listings/l-1/bids/", "seller-1", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var list rest.BidList
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &list))
	rq.Len(list.Bids, 1)

	// Opening the list persists the marker at the full count.
	rq.NotEmpty(f.markers.upserts)
	last := f.markers.upserts[len(f.markers.upserts)-1]
	rq.Equal("seller-1", last.UserID)
	rq.Equal(1, last.LastSeenCount)

	rq.Equal(0, f.sessions.For("seller-1").Unread("l-1"))
}

func TestBidListForbiddenForNonOwner(t *testing.T) {
	rq := require.New(t)
	f := newFixture()

	f.listings.listings["l-1"] = activeListing("l-1", "seller-1", 0)

	rec := f.do(t, http.MethodGet, "/v1/listings/l-1/bids/", "someone-else", nil)
	rq.Equal(http.StatusForbidden, rec.Code)
}

func TestAcceptBidRoute(t *testing.T) {
	rq := require.New(t)
	f := newFixture()

	f.listings.listings["l-1"] = activeListing("l-1", "seller-1", 0)
	f.bids.bids["bid-1"] = &entity.Bid{
		ID:        "bid-1",
		ListingID: "l-1",
		BidderID:  "bidder-1",
		Amount:    8000,
	}

	rec := f.do(t, http.MethodPost, "/v1/listings/l-1/bids/bid-1/accept", "seller-1", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var ref rest.ConversationRef
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &ref))
	rq.Equal("conv-1", ref.ConversationID)
	rq.Len(f.convs.messages, 1)
}

func TestAcceptBidMissingBidderRoute(t *testing.T) {
	rq := require.New(t)
	f := newFixture()

	f.listings.listings["l-1"] = activeListing("l-1", "seller-1", 0)
	f.bids.bids["bid-1"] = &entity.Bid{
		ID:        "bid-1",
		ListingID: "l-1",
		Amount:    8000,
	}

	rec := f.do(t, http.MethodPost, "/v1/listings/l-1/bids/bid-1/accept", "seller-1", nil)
	rq.Equal(http.StatusBadRequest, rec.Code)

	var body rest.Error
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	rq.Equal("MissingBidder", body.Code)
	rq.Empty(f.convs.messages)
}

// Messaging failures are retryable and must reach the client with
// their code, not collapse into a bare 500.
func TestAcceptBidMessagingFailureRoutes(t *testing.T) {
	testCases := []struct {
		name      string
		createErr error
		postErr   error
		wantErr   string
	}{
		{
			name:      "conversation create fails",
			createErr: errors.New("db down"),
			wantErr:   "ConversationCreateFailed",
		},
		{
			name:    "message post fails",
			postErr: errors.New("db down"),
			wantErr: "MessagePostFailed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			f := newFixture()

			f.convs.createErr = tc.createErr
			f.convs.postErr = tc.postErr

			f.listings.listings["l-1"] = activeListing("l-1", "seller-1", 0)
			f.bids.bids["bid-1"] = &entity.Bid{
				ID:        "bid-1",
				ListingID: "l-1",
				BidderID:  "bidder-1",
				Amount:    8000,
			}

			rec := f.do(t, http.MethodPost, "/v1/listings/l-1/bids/bid-1/accept", "seller-1", nil)
			rq.Equal(http.StatusUnprocessableEntity, rec.Code)

			var body rest.Error
			rq.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
			rq.Equal(tc.wantErr, body.Code)
		})
	}
}

func TestContactRoute(t *testing.T) {
	rq := require.New(t)
	f := newFixture()

	f.listings.listings["l-1"] = activeListing("l-1", "seller-1", 0)
	f.bids.bids["bid-1"] = &entity.Bid{
		ID:        "bid-1",
		ListingID: "l-2",
		BidderID:  "bidder-1",
		Amount:    8000,
	}

	// Bid belongs to a different listing than the route says.
	rec := f.do(t, http.MethodPost, "/v1/listings/l-1/bids/bid-1/contact", "seller-1", nil)
	rq.Equal(http.StatusNotFound, rec.Code)

	f.bids.bids["bid-1"].ListingID = "l-1"

	rec = f.do(t, http.MethodPost, "/v1/listings/l-1/bids/bid-1/contact", "seller-1", nil)
	rq.Equal(http.StatusOK, rec.Code)
	rq.Empty(f.convs.messages)
}
