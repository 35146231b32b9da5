package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/agrisoko/sokobot/market/model"
)

const listingColumns = `id, seller_id, commodity, quantity, unit, quality, location, min_price, deadline, status, created_at`

// CreateListing inserts an open listing and fills the generated id and
// creation time back into the struct.
func (s *SQLStore) CreateListing(ctx context.Context, listing *model.Listing) error {
	listing.Commodity = strings.ToUpper(listing.Commodity)
	listing.Status = model.ListingOpen

	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO listings (seller_id, commodity, quantity, unit, quality, location, min_price, deadline, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		listing.SellerID, listing.Commodity, listing.Quantity, listing.Unit,
		listing.Quality, listing.Location, listing.MinPrice, listing.Deadline,
		listing.Status,
	).Scan(&listing.ID, &listing.CreatedAt)
	return errors.Wrap(err, "store.CreateListing")
}

// GetListing fetches a listing by id.
func (s *SQLStore) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	var listing model.Listing
	err := s.db.GetContext(ctx, &listing,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "store.GetListing")
	}
	return &listing, nil
}

// OpenListings returns all open listings, newest first.
func (s *SQLStore) OpenListings(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	err := s.db.SelectContext(ctx, &listings,
		`SELECT `+listingColumns+` FROM listings WHERE status = $1 ORDER BY created_at DESC`,
		model.ListingOpen)
	if err != nil {
		return nil, errors.Wrap(err, "store.OpenListings")
	}
	return listings, nil
}

// OpenListingsMatchingOptIns returns open listings whose commodity and
// location match any active opt-in of the given user, newest first.
func (s *SQLStore) OpenListingsMatchingOptIns(ctx context.Context, userID int64) ([]model.Listing, error) {
	var listings []model.Listing
	err := s.db.SelectContext(ctx, &listings,
		`SELECT DISTINCT l.id, l.seller_id, l.commodity, l.quantity, l.unit, l.quality,
		        l.location, l.min_price, l.deadline, l.status, l.created_at
		 FROM listings l
		 JOIN opt_ins o ON o.commodity = l.commodity AND o.region = l.location
		 WHERE o.user_id = $1 AND o.active AND l.status = $2
		 ORDER BY l.created_at DESC, l.id`,
		userID, model.ListingOpen)
	if err != nil {
		return nil, errors.Wrap(err, "store.OpenListingsMatchingOptIns")
	}
	return listings, nil
}
