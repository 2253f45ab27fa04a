package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	AuthRequired        failure.ErrorCode = "AuthRequired"
	InvalidPaging       failure.ErrorCode = "InvalidPaging"

	// Listing module.
	ListingNotFound      failure.ErrorCode = "ListingNotFound"
	InvalidListingID     failure.ErrorCode = "InvalidListingID"
	InvalidListingStatus failure.ErrorCode = "InvalidListingStatus"
	ListingNotBiddable   failure.ErrorCode = "ListingNotBiddable" // bids disabled or listing not active

	// Bid module.
	BidNotFound      failure.ErrorCode = "BidNotFound"
	InvalidBidID     failure.ErrorCode = "InvalidBidID"
	InvalidBidAmount failure.ErrorCode = "InvalidBidAmount"
	BidBelowMinimum  failure.ErrorCode = "BidBelowMinimum"
	OwnListingBid    failure.ErrorCode = "OwnListingBid"
	MissingBidder    failure.ErrorCode = "MissingBidder" // bid record without a bidder reference

	// Messaging module.
	ConversationNotFound     failure.ErrorCode = "ConversationNotFound"
	ConversationCreateFailed failure.ErrorCode = "ConversationCreateFailed"
	MessagePostFailed        failure.ErrorCode = "MessagePostFailed"

	// Read tracking. Never shown to users, lives in logs and task retries.
	ReadMarkerPersistFailed failure.ErrorCode = "ReadMarkerPersistFailed"
)
