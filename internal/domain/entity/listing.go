package entity

import "time"

type ListingStatus string

const (
	ListingStatusActive ListingStatus = "active"
	ListingStatusPaused ListingStatus = "paused"
	ListingStatusSold   ListingStatus = "sold"
	ListingStatusDraft  ListingStatus = "draft"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusActive, ListingStatusPaused, ListingStatusSold, ListingStatusDraft:
		return true
	}
	return false
}

type Listing struct {
	ID        string        `json:"id" db:"id"`
	SellerID  string        `json:"seller_id" db:"seller_id"`
	Title     string        `json:"title" db:"title"`
	Price     int64         `json:"price" db:"price"` // cents
	Status    ListingStatus `json:"status" db:"status"`
	AllowBids bool          `json:"allow_bids" db:"allow_bids"`
	MinBid    int64         `json:"min_bid" db:"min_bid"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// Biddable reports whether the listing currently accepts bids.
func (l Listing) Biddable() bool {
	return l.AllowBids && l.Status == ListingStatusActive
}

// ListingStats is a listing together with its bid aggregates, as
// returned by the listings query. HighestBid is nil when the listing
// has no bids yet.
type ListingStats struct {
	Listing
	BidCount   int    `json:"bid_count" db:"bid_count"`
	HighestBid *int64 `json:"highest_bid" db:"highest_bid"`
}
