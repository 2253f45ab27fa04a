package entity

import "time"

type Conversation struct {
	ID        string    `json:"id" db:"id"`
	ListingID string    `json:"listing_id" db:"listing_id"`
	SellerID  string    `json:"seller_id" db:"seller_id"`
	BuyerID   string    `json:"buyer_id" db:"buyer_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Message struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	SenderID       string    `json:"sender_id" db:"sender_id"`
	Body           string    `json:"body" db:"body"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
