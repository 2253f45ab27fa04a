package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"bid_market/internal/domain"
	"bid_market/internal/domain/entity"
	"bid_market/internal/domain/service/offer"
	"bid_market/pkg/contextx"
	"bid_market/pkg/errcodes"
	"bid_market/pkg/httpx/reply"
	"bid_market/pkg/httpx/req"
	"bid_market/pkg/logx"
	"bid_market/pkg/rest"
)

type bidStore interface {
	Create(ctx context.Context, bid *entity.Bid) error
	GetByID(ctx context.Context, id string) (*entity.Bid, error)
	ListByListing(ctx context.Context, listingID string) ([]entity.Bid, error)
}

type bidPublisher interface {
	PublishBid(ctx context.Context, ev entity.BidEvent) error
}

type BidServer struct {
	listings  listingStore
	bids      bidStore
	publisher bidPublisher
	sessions  *offer.Registry
	messenger *offer.Messenger
}

func NewBidServer(
	listings listingStore,
	bids bidStore,
	publisher bidPublisher,
	sessions *offer.Registry,
	messenger *offer.Messenger,
) BidServer {
	return BidServer{
		listings:  listings,
		bids:      bids,
		publisher: publisher,
		sessions:  sessions,
		messenger: messenger,
	}
}

func (s BidServer) postV1ListingBid(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	bidderID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		return domain.NewError(errcodes.AuthRequired, "no authenticated user")
	}

	var request rest.PlaceBidRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	listing, err := s.listings.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("listings.GetByID: %w", err)
	}

	if !listing.Biddable() {
		return domain.NewError(errcodes.ListingNotBiddable, "listing does not accept bids")
	}

	if listing.SellerID == bidderID.String() {
		return domain.NewError(errcodes.OwnListingBid, "cannot bid on your own listing")
	}

	if request.Amount < listing.MinBid {
		return domain.NewError(errcodes.BidBelowMinimum, "bid below the listing minimum")
	}

	bid := entity.Bid{
		ID:        xid.New().String(),
		ListingID: listing.ID,
		BidderID:  bidderID.String(),
		Amount:    request.Amount,
		CreatedAt: time.Now(),
	}

	if err := s.bids.Create(ctx, &bid); err != nil {
		return fmt.Errorf("bids.Create: %w", err)
	}

	bidsPlaced.Inc()

	// The bid is durable at this point; a lost event only delays the
	// badge until the seller's next full load.
	ev := entity.BidEvent{
		ListingID: listing.ID,
		SellerID:  listing.SellerID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt,
	}
	if err := s.publisher.PublishBid(ctx, ev); err != nil {
		logger(ctx).Error("failed to publish bid event", logx.Error(err))
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTBid(bid))

	return nil
}

// getV1ListingBids is the seller opening the bid list: it returns the
// history and marks everything seen for this session.
func (s BidServer) getV1ListingBids(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		return domain.NewError(errcodes.AuthRequired, "no authenticated user")
	}

	listing, err := s.listings.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("listings.GetByID: %w", err)
	}

	if listing.SellerID != userID.String() {
		return domain.NewError(errcodes.Forbidden, "not your listing")
	}

	bids, err := s.bids.ListByListing(ctx, listing.ID)
	if err != nil {
		return fmt.Errorf("bids.ListByListing: %w", err)
	}

	var highest *int64
	for _, b := range bids {
		if highest == nil || b.Amount > *highest {
			amount := b.Amount
			highest = &amount
		}
	}

	tracker := s.sessions.For(userID.String())
	tracker.ObserveFetch(ctx, listing.ID, len(bids), highest)
	tracker.MarkSeen(ctx, listing.ID)

	reply.JSON(ctx, w, http.StatusOK, newRESTBidList(bids))

	return nil
}

func (s BidServer) postV1BidAccept(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	bid, err := s.ownedBid(ctx, r)
	if err != nil {
		return err
	}

	conv, err := s.messenger.AcceptBid(ctx, *bid)
	if err != nil {
		return fmt.Errorf("messenger.AcceptBid: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.ConversationRef{ConversationID: conv.ID})

	return nil
}

func (s BidServer) postV1BidContact(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	bid, err := s.ownedBid(ctx, r)
	if err != nil {
		return err
	}

	conv, err := s.messenger.Contact(ctx, *bid)
	if err != nil {
		return fmt.Errorf("messenger.Contact: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.ConversationRef{ConversationID: conv.ID})

	return nil
}

// ownedBid loads the bid addressed by the route and checks the caller
// owns the listing it belongs to.
func (s BidServer) ownedBid(ctx context.Context, r *http.Request) (*entity.Bid, error) {
	userID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		return nil, domain.NewError(errcodes.AuthRequired, "no authenticated user")
	}

	bid, err := s.bids.GetByID(ctx, chi.URLParam(r, "bidID"))
	if err != nil {
		return nil, fmt.Errorf("bids.GetByID: %w", err)
	}

	if bid.ListingID != chi.URLParam(r, "id") {
		return nil, domain.NewError(errcodes.BidNotFound, "bid does not belong to this listing")
	}

	listing, err := s.listings.GetByID(ctx, bid.ListingID)
	if err != nil {
		return nil, fmt.Errorf("listings.GetByID: %w", err)
	}

	if listing.SellerID != userID.String() {
		return nil, domain.NewError(errcodes.Forbidden, "not your listing")
	}

	return bid, nil
}
