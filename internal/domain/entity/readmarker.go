package entity

import "time"

// ReadMarker records how many bids a seller had seen for a listing as
// of their last review. LastSeenCount is monotonically non-decreasing
// for a (user, listing) pair: it advances when the seller opens the
// bid list and never goes back.
type ReadMarker struct {
	UserID        string    `json:"user_id" db:"user_id"`
	ListingID     string    `json:"listing_id" db:"listing_id"`
	LastSeenCount int       `json:"last_seen_count" db:"last_seen_count"`
	LastSeenAt    time.Time `json:"last_seen_at" db:"last_seen_at"`
}
