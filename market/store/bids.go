package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/agrisoko/sokobot/market/model"
)

const bidColumns = `id, listing_id, buyer_id, price_per_unit, quantity, note, status, created_at`

// CreateBid inserts a placed bid and fills the generated id and creation time
// back into the struct.
func (s *SQLStore) CreateBid(ctx context.Context, bid *model.Bid) error {
	bid.Status = model.BidPlaced

	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO bids (listing_id, buyer_id, price_per_unit, quantity, note, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		bid.ListingID, bid.BuyerID, bid.PricePerUnit, bid.Quantity, bid.Note, bid.Status,
	).Scan(&bid.ID, &bid.CreatedAt)
	return errors.Wrap(err, "store.CreateBid")
}

// GetBid fetches a bid by id.
func (s *SQLStore) GetBid(ctx context.Context, id int64) (*model.Bid, error) {
	var bid model.Bid
	err := s.db.GetContext(ctx, &bid,
		`SELECT `+bidColumns+` FROM bids WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "store.GetBid")
	}
	return &bid, nil
}

// AcceptBid performs the accept sequence atomically: lock the listing row,
// verify it is still open, accept the bid, reject placed siblings, close the
// listing.
func (s *SQLStore) AcceptBid(ctx context.Context, bid *model.Bid) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "store.AcceptBid.Begin")
	}
	defer func() { _ = tx.Rollback() }()

	var status model.ListingStatus
	err = tx.GetContext(ctx, &status,
		`SELECT status FROM listings WHERE id = $1 FOR UPDATE`, bid.ListingID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "store.AcceptBid.Lock")
	}
	if status != model.ListingOpen {
		return 0, ErrListingClosed
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bids SET status = $1 WHERE id = $2`,
		model.BidAccepted, bid.ID); err != nil {
		return 0, errors.Wrap(err, "store.AcceptBid.Accept")
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE bids SET status = $1 WHERE listing_id = $2 AND id <> $3 AND status = $4`,
		model.BidRejected, bid.ListingID, bid.ID, model.BidPlaced)
	if err != nil {
		return 0, errors.Wrap(err, "store.AcceptBid.RejectSiblings")
	}
	rejected, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx,
		`UPDATE listings SET status = $1 WHERE id = $2`,
		model.ListingClosed, bid.ListingID); err != nil {
		return 0, errors.Wrap(err, "store.AcceptBid.CloseListing")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "store.AcceptBid.Commit")
	}
	return rejected, nil
}
