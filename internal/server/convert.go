package server

import (
	"bid_market/internal/domain/entity"
	"bid_market/pkg/lox"
	"bid_market/pkg/rest"
)

func newRESTListing(listing entity.Listing) rest.Listing {
	return rest.Listing{
		ID:        listing.ID,
		SellerID:  listing.SellerID,
		Title:     listing.Title,
		Price:     listing.Price,
		Status:    string(listing.Status),
		AllowBids: listing.AllowBids,
		MinBid:    listing.MinBid,
	}
}

func newRESTListingsWithStats(stats []entity.ListingStats, unread map[string]int) []rest.ListingWithStats {
	return lox.Map(stats, func(ls entity.ListingStats) rest.ListingWithStats {
		return rest.ListingWithStats{
			Listing:    newRESTListing(ls.Listing),
			Bids:       ls.BidCount,
			HighestBid: ls.HighestBid,
			Unread:     unread[ls.ID],
		}
	})
}

func applyListingUpdate(listing *entity.Listing, request rest.UpdateListingRequest) {
	if request.Title != nil {
		listing.Title = *request.Title
	}
	if request.Price != nil {
		listing.Price = *request.Price
	}
	if request.Status != nil {
		listing.Status = entity.ListingStatus(*request.Status)
	}
	if request.AllowBids != nil {
		listing.AllowBids = *request.AllowBids
	}
	if request.MinBid != nil {
		listing.MinBid = *request.MinBid
	}
}

func newRESTBid(bid entity.Bid) rest.Bid {
	return rest.Bid{
		ID:         bid.ID,
		ListingID:  bid.ListingID,
		BidderID:   bid.BidderID,
		BidderName: bid.BidderName,
		Amount:     bid.Amount,
		CreatedAt:  bid.CreatedAt,
	}
}

func newRESTBidList(bids []entity.Bid) rest.BidList {
	return rest.BidList{
		Bids: lox.Map(bids, newRESTBid),
	}
}
