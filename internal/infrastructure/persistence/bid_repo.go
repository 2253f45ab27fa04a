package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"bid_market/internal/domain"
	"bid_market/internal/domain/entity"
	"bid_market/pkg/errcodes"
)

// BidRepository is append-only: bids are inserted and read, never
// updated or deleted.
type BidRepository struct {
	db *sqlx.DB
}

func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO bids (id, listing_id, bidder_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query,
		bid.ID, bid.ListingID, bid.BidderID, bid.Amount, bid.CreatedAt,
	); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert bid")
	}

	return nil
}

func (r *BidRepository) GetByID(ctx context.Context, id string) (*entity.Bid, error) {
	query := `
		SELECT b.id, b.listing_id, b.bidder_id, b.amount, b.created_at,
		       COALESCE(u.name, '') AS bidder_name
		FROM bids b
		LEFT JOIN users u ON u.id = b.bidder_id
		WHERE b.id = $1`

	var bid entity.Bid
	if err := r.db.GetContext(ctx, &bid, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.BidNotFound, "bid not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get bid")
	}

	return &bid, nil
}

// ListByListing returns the full bid history of a listing, newest
// first.
func (r *BidRepository) ListByListing(ctx context.Context, listingID string) ([]entity.Bid, error) {
	query := `
		SELECT b.id, b.listing_id, b.bidder_id, b.amount, b.created_at,
		       COALESCE(u.name, '') AS bidder_name
		FROM bids b
		LEFT JOIN users u ON u.id = b.bidder_id
		WHERE b.listing_id = $1
		ORDER BY b.created_at DESC, b.id DESC`

	var bids []entity.Bid
	if err := r.db.SelectContext(ctx, &bids, query, listingID); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list bids")
	}

	return bids, nil
}
