package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"bid_market/internal/domain"
	"bid_market/internal/domain/entity"
	"bid_market/internal/domain/service/offer"
	"bid_market/pkg/contextx"
	"bid_market/pkg/errcodes"
	"bid_market/pkg/httpx/reply"
	"bid_market/pkg/httpx/req"
	"bid_market/pkg/rest"
)

type listingStore interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]entity.ListingStats, error)
	Update(ctx context.Context, listing *entity.Listing) error
}

type markerReader interface {
	GetForListings(ctx context.Context, userID string, listingIDs []string) (map[string]int, error)
}

type ListingServer struct {
	listings listingStore
	markers  markerReader
	sessions *offer.Registry
}

func NewListingServer(
	listings listingStore,
	markers markerReader,
	sessions *offer.Registry,
) ListingServer {
	return ListingServer{
		listings: listings,
		markers:  markers,
		sessions: sessions,
	}
}

// getV1Listings returns the caller's listings with bid aggregates and
// the session's unread badge per listing. This is the full
// reconciliation entry point: stored markers and the session cache are
// merged here.
func (s ListingServer) getV1Listings(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		return domain.NewError(errcodes.AuthRequired, "no authenticated user")
	}

	stats, err := s.listings.ListBySeller(ctx, userID.String())
	if err != nil {
		return fmt.Errorf("listings.ListBySeller: %w", err)
	}

	ids := make([]string, 0, len(stats))
	for _, ls := range stats {
		ids = append(ids, ls.ID)
	}

	serverMarkers, err := s.markers.GetForListings(ctx, userID.String(), ids)
	if err != nil {
		return fmt.Errorf("markers.GetForListings: %w", err)
	}

	tracker := s.sessions.For(userID.String())
	unread := tracker.Initialize(ctx, stats, serverMarkers)

	reply.JSON(ctx, w, http.StatusOK, newRESTListingsWithStats(stats, unread))

	return nil
}

func (s ListingServer) getV1Listing(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	listing, err := s.listings.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("listings.GetByID: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTListing(*listing))

	return nil
}

func (s ListingServer) postV1Listing(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		return domain.NewError(errcodes.AuthRequired, "no authenticated user")
	}

	var request rest.CreateListingRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	status := entity.ListingStatus(request.Status)
	if request.Status == "" {
		status = entity.ListingStatusDraft
	}

	listing := entity.Listing{
		ID:        xid.New().String(),
		SellerID:  userID.String(),
		Title:     request.Title,
		Price:     request.Price,
		Status:    status,
		AllowBids: request.AllowBids,
		MinBid:    request.MinBid,
	}

	if err := s.listings.Create(ctx, &listing); err != nil {
		return fmt.Errorf("listings.Create: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTListing(listing))

	return nil
}

func (s ListingServer) patchV1Listing(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		return domain.NewError(errcodes.AuthRequired, "no authenticated user")
	}

	var request rest.UpdateListingRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	listing, err := s.listings.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("listings.GetByID: %w", err)
	}

	if listing.SellerID != userID.String() {
		return domain.NewError(errcodes.Forbidden, "not your listing")
	}

	applyListingUpdate(listing, request)

	if !listing.Status.Valid() {
		return domain.NewError(errcodes.InvalidListingStatus, "unknown listing status")
	}

	if err := s.listings.Update(ctx, listing); err != nil {
		return fmt.Errorf("listings.Update: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTListing(*listing))

	return nil
}
