package entity

import "time"

// Bid is append-only: once inserted it is never updated or deleted.
// The bid history is the ledger of offers for a listing.
type Bid struct {
	ID         string    `json:"id" db:"id"`
	ListingID  string    `json:"listing_id" db:"listing_id"`
	BidderID   string    `json:"bidder_id" db:"bidder_id"`
	BidderName string    `json:"bidder_name" db:"bidder_name"`
	Amount     int64     `json:"amount" db:"amount"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// BidEvent is the payload pushed on the realtime channel whenever a
// bid is persisted. Delivery is at-least-once and the channel carries
// no dedup key.
type BidEvent struct {
	ListingID string    `json:"listing_id"`
	SellerID  string    `json:"seller_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
