package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"bid_market/internal/domain"
	"bid_market/internal/domain/entity"
	"bid_market/pkg/errcodes"
)

type ReadMarkerRepository struct {
	db *sqlx.DB
}

func NewReadMarkerRepository(db *sqlx.DB) *ReadMarkerRepository {
	return &ReadMarkerRepository{db: db}
}

// GetForListings batch-reads a user's markers for a set of listings.
// Listings with no marker are simply absent from the result.
func (r *ReadMarkerRepository) GetForListings(
	ctx context.Context,
	userID string,
	listingIDs []string,
) (map[string]int, error) {
	if len(listingIDs) == 0 {
		return map[string]int{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT user_id, listing_id, last_seen_count, last_seen_at
		FROM read_markers
		WHERE user_id = ? AND listing_id IN (?)`, userID, listingIDs)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
	}

	var markers []entity.ReadMarker
	if err := r.db.SelectContext(ctx, &markers, r.db.Rebind(query), args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get read markers")
	}

	out := make(map[string]int, len(markers))
	for _, m := range markers {
		out[m.ListingID] = m.LastSeenCount
	}

	return out, nil
}

// Upsert merges with GREATEST so a stale writer can never lower the
// stored count. Idempotent by (user_id, listing_id), which makes the
// asynq task safe under at-least-once delivery.
func (r *ReadMarkerRepository) Upsert(ctx context.Context, marker entity.ReadMarker) error {
	query := `
		INSERT INTO read_markers (user_id, listing_id, last_seen_count, last_seen_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, listing_id) DO UPDATE SET
			last_seen_count = GREATEST(read_markers.last_seen_count, EXCLUDED.last_seen_count),
			last_seen_at    = EXCLUDED.last_seen_at`

	if _, err := r.db.ExecContext(ctx, query,
		marker.UserID, marker.ListingID, marker.LastSeenCount, marker.LastSeenAt,
	); err != nil {
		return domain.WrapError(err, errcodes.ReadMarkerPersistFailed, "failed to upsert read marker")
	}

	return nil
}
