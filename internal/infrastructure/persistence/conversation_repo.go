package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"bid_market/internal/domain"
	"bid_market/internal/domain/entity"
	"bid_market/pkg/errcodes"
)

type ConversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// withTx runs fn inside a transaction.
func (r *ConversationRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// GetOrCreate returns the conversation between seller and buyer scoped
// to a listing, creating it on first contact. The unique key on
// (listing_id, seller_id, buyer_id) makes creation race-safe.
func (r *ConversationRepository) GetOrCreate(
	ctx context.Context,
	listingID, sellerID, buyerID string,
) (entity.Conversation, error) {
	var conv entity.Conversation

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			SELECT id, listing_id, seller_id, buyer_id, created_at
			FROM conversations
			WHERE listing_id = $1 AND seller_id = $2 AND buyer_id = $3`

		err := tx.GetContext(ctx, &conv, query, listingID, sellerID, buyerID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to get conversation")
		}

		conv = entity.Conversation{
			ID:        xid.New().String(),
			ListingID: listingID,
			SellerID:  sellerID,
			BuyerID:   buyerID,
			CreatedAt: time.Now(),
		}

		insert := `
			INSERT INTO conversations (id, listing_id, seller_id, buyer_id, created_at)
			VALUES (:id, :listing_id, :seller_id, :buyer_id, :created_at)
			ON CONFLICT (listing_id, seller_id, buyer_id) DO NOTHING`

		res, err := tx.NamedExecContext(ctx, insert, conv)
		if err != nil {
			return domain.WrapError(err, errcodes.ConversationCreateFailed, "failed to create conversation")
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
		}

		if rows == 0 {
			// Lost the race; fetch the winner's row.
			if err := tx.GetContext(ctx, &conv, query, listingID, sellerID, buyerID); err != nil {
				return domain.WrapError(err, errcodes.ConversationCreateFailed, "failed to get conversation")
			}
		}

		return nil
	})
	if err != nil {
		return entity.Conversation{}, err
	}

	return conv, nil
}

func (r *ConversationRepository) PostMessage(
	ctx context.Context,
	conversationID, senderID, body string,
) (entity.Message, error) {
	msg := entity.Message{
		ID:             xid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now(),
	}

	query := `
		INSERT INTO messages (id, conversation_id, sender_id, body, created_at)
		SELECT :id, :conversation_id, :sender_id, :body, :created_at
		WHERE EXISTS (SELECT 1 FROM conversations WHERE id = :conversation_id)`

	res, err := r.db.NamedExecContext(ctx, query, msg)
	if err != nil {
		return entity.Message{}, domain.WrapError(err, errcodes.MessagePostFailed, "failed to post message")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return entity.Message{}, domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return entity.Message{}, domain.NewError(errcodes.ConversationNotFound, "conversation not found")
	}

	return msg, nil
}
