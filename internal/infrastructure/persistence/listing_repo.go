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

type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	now := time.Now()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = now

	query := `
		INSERT INTO listings (id, seller_id, title, price, status, allow_bids, min_bid, created_at, updated_at)
		VALUES (:id, :seller_id, :title, :price, :status, :allow_bids, :min_bid, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, listing); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert listing")
	}

	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	query := `
		SELECT id, seller_id, title, price, status, allow_bids, min_bid, created_at, updated_at
		FROM listings
		WHERE id = $1`

	var listing entity.Listing
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.ListingNotFound, "listing not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get listing")
	}

	return &listing, nil
}

// ListBySeller returns the seller's listings together with their bid
// aggregates, the shape the reconciliation engine initializes from.
func (r *ListingRepository) ListBySeller(ctx context.Context, sellerID string) ([]entity.ListingStats, error) {
	query := `
		SELECT l.id, l.seller_id, l.title, l.price, l.status, l.allow_bids, l.min_bid,
		       l.created_at, l.updated_at,
		       COUNT(b.id)::int AS bid_count,
		       MAX(b.amount)    AS highest_bid
		FROM listings l
		LEFT JOIN bids b ON b.listing_id = l.id
		WHERE l.seller_id = $1
		GROUP BY l.id
		ORDER BY l.created_at DESC`

	var stats []entity.ListingStats
	if err := r.db.SelectContext(ctx, &stats, query, sellerID); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list listings")
	}

	return stats, nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	listing.UpdatedAt = time.Now()

	query := `
		UPDATE listings SET
			title = :title,
			price = :price,
			status = :status,
			allow_bids = :allow_bids,
			min_bid = :min_bid,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, listing)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to update listing")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.ListingNotFound, "listing not found")
	}

	return nil
}
