package server

import (
	"git.appkode.ru/pub/go/failure"

	"bid_market/internal/domain"
	"bid_market/pkg/errcodes"
)

// asFailure translates domain errors into failure classes so
// reply.Error picks the right HTTP status. Anything unrecognized stays
// as-is and lands on 500.
func asFailure(err error) error {
	code, ok := domain.GetCode(err)
	if !ok {
		return err
	}

	switch code {
	case errcodes.AuthRequired:
		return failure.NewUnauthorizedErrorFromError(err, failure.WithCode(code))
	case errcodes.Forbidden, errcodes.OwnListingBid:
		return failure.NewForbiddenErrorFromError(err, failure.WithCode(code))
	case errcodes.ListingNotFound, errcodes.BidNotFound, errcodes.ConversationNotFound, errcodes.NotFound:
		return failure.NewNotFoundErrorFromError(err, failure.WithCode(code))
	case errcodes.ValidationError, errcodes.InvalidListingID, errcodes.InvalidListingStatus,
		errcodes.InvalidBidID, errcodes.InvalidBidAmount, errcodes.MissingBidder:
		return failure.NewInvalidArgumentErrorFromError(err, failure.WithCode(code))
	case errcodes.BidBelowMinimum, errcodes.ListingNotBiddable:
		return failure.NewUnprocessableEntityErrorFromError(err, failure.WithCode(code))
	case errcodes.ConversationCreateFailed, errcodes.MessagePostFailed:
		// User-visible and retryable: the accept/contact could not be
		// completed, the client should see which step failed.
		return failure.NewUnprocessableEntityErrorFromError(err, failure.WithCode(code))
	default:
		return err
	}
}
