package offer

import (
	"context"
	"fmt"

	"bid_market/internal/domain"
	"bid_market/internal/domain/entity"
	"bid_market/pkg/contextx"
	"bid_market/pkg/errcodes"
)

// ConversationStore is the messaging collaborator: the offer service
// only asks for a conversation and posts into it, it does not own
// either entity.
type ConversationStore interface {
	GetOrCreate(ctx context.Context, listingID, sellerID, buyerID string) (entity.Conversation, error)
	PostMessage(ctx context.Context, conversationID, senderID, body string) (entity.Message, error)
}

// Messenger drives the accept/contact transitions between a seller and
// a bidder. Accepting never mutates the bid row: the bid history stays
// the immutable ledger, acceptance is communicated purely as a message.
type Messenger struct {
	conversations ConversationStore
}

func NewMessenger(conversations ConversationStore) *Messenger {
	return &Messenger{conversations: conversations}
}

// AcceptBid opens (or reuses) a conversation with the bidder and posts
// the acceptance message. When the post fails after the conversation
// was created, the transition stops at contact-initiated; retrying the
// accept is the remedy, the conversation is not rolled back.
func (m *Messenger) AcceptBid(ctx context.Context, bid entity.Bid) (entity.Conversation, error) {
	conv, err := m.open(ctx, bid)
	if err != nil {
		return entity.Conversation{}, err
	}

	sellerID, _ := contextx.UserIDFromContext(ctx)

	body := fmt.Sprintf(
		"Hi! I accept your offer of €%.2f. Let's sort out payment and handover here.",
		float64(bid.Amount)/100,
	)

	if _, err := m.conversations.PostMessage(ctx, conv.ID, sellerID.String(), body); err != nil {
		return entity.Conversation{}, domain.WrapError(err, errcodes.MessagePostFailed,
			"conversation created but acceptance message failed")
	}

	return conv, nil
}

// Contact opens the conversation without posting anything.
func (m *Messenger) Contact(ctx context.Context, bid entity.Bid) (entity.Conversation, error) {
	return m.open(ctx, bid)
}

func (m *Messenger) open(ctx context.Context, bid entity.Bid) (entity.Conversation, error) {
	sellerID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		return entity.Conversation{}, domain.NewError(errcodes.AuthRequired, "no authenticated user")
	}

	if bid.BidderID == "" {
		return entity.Conversation{}, domain.NewError(errcodes.MissingBidder,
			"bid has no bidder reference")
	}

	conv, err := m.conversations.GetOrCreate(ctx, bid.ListingID, sellerID.String(), bid.BidderID)
	if err != nil {
		return entity.Conversation{}, domain.WrapError(err, errcodes.ConversationCreateFailed,
			"failed to create conversation")
	}

	return conv, nil
}
