package rest

import "time"

type Listing struct {
	ID        string `json:"id"`
	SellerID  string `json:"sellerId"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Status    string `json:"status"`
	AllowBids bool   `json:"allowBids"`
	MinBid    int64  `json:"minBid"`
}

// ListingWithStats is a listing as seen by its seller: aggregates plus
// the session's unread badge.
type ListingWithStats struct {
	Listing
	Bids       int    `json:"bids"`
	HighestBid *int64 `json:"highestBid"`
	Unread     int    `json:"unread"`
}

type CreateListingRequest struct {
	Title     string `json:"title" validate:"required,max=140"`
	Price     int64  `json:"price" validate:"gte=0"`
	Status    string `json:"status" validate:"omitempty,oneof=active paused sold draft"`
	AllowBids bool   `json:"allowBids"`
	MinBid    int64  `json:"minBid" validate:"gte=0"`
}

type UpdateListingRequest struct {
	Title     *string `json:"title" validate:"omitempty,max=140"`
	Price     *int64  `json:"price" validate:"omitempty,gte=0"`
	Status    *string `json:"status" validate:"omitempty,oneof=active paused sold draft"`
	AllowBids *bool   `json:"allowBids"`
	MinBid    *int64  `json:"minBid" validate:"omitempty,gte=0"`
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type Bid struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listingId"`
	BidderID   string    `json:"bidderId"`
	BidderName string    `json:"bidderName"`
	Amount     int64     `json:"amount"`
	CreatedAt  time.Time `json:"createdAt"`
}

type BidList struct {
	Bids []Bid `json:"bids"`
}

type ConversationRef struct {
	ConversationID string `json:"conversationId"`
}

// Error is the HTTP error body.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
