package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/agrisoko/sokobot/market/model"
	"github.com/agrisoko/sokobot/market/store"
)

func (r *Router) handleBid(ctx context.Context, user *model.User, msg string) error {
	const usage = "Usage: BID <listingId> <pricePerUnit> <quantity>"

	parts := strings.Fields(msg)
	if len(parts) < 4 {
		r.send(ctx, user.Phone, usage)
		return nil
	}
	listingID, err1 := strconv.ParseInt(parts[1], 10, 64)
	price, err2 := strconv.ParseFloat(parts[2], 64)
	qty, err3 := strconv.ParseFloat(parts[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		r.send(ctx, user.Phone, usage)
		return nil
	}

	listing, err := r.store.GetListing(ctx, listingID)
	if errors.Is(err, store.ErrNotFound) {
		r.send(ctx, user.Phone, "Listing not found or closed.")
		return nil
	}
	if err != nil {
		return err
	}
	if listing.Status != model.ListingOpen {
		r.send(ctx, user.Phone, "Listing not found or closed.")
		return nil
	}

	bid := &model.Bid{
		ListingID:    listing.ID,
		BuyerID:      user.ID,
		PricePerUnit: price,
		Quantity:     qty,
	}
	if err := r.store.CreateBid(ctx, bid); err != nil {
		return err
	}

	r.send(ctx, user.Phone, fmt.Sprintf("Bid placed. ID %d.", bid.ID))
	r.notifier.BidPlaced(ctx, listing, bid, user.Phone)
	return nil
}

func (r *Router) handleAccept(ctx context.Context, user *model.User, msg string) error {
	const usage = "Usage: ACCEPT <bidId>"

	if user.Role != model.RoleSeller {
		r.send(ctx, user.Phone, "Only sellers can accept bids.")
		return nil
	}

	parts := strings.Fields(msg)
	if len(parts) < 2 {
		r.send(ctx, user.Phone, usage)
		return nil
	}
	bidID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		r.send(ctx, user.Phone, usage)
		return nil
	}

	bid, err := r.store.GetBid(ctx, bidID)
	if errors.Is(err, store.ErrNotFound) {
		r.send(ctx, user.Phone, "Bid not found.")
		return nil
	}
	if err != nil {
		return err
	}

	listing, err := r.store.GetListing(ctx, bid.ListingID)
	if errors.Is(err, store.ErrNotFound) {
		r.send(ctx, user.Phone, "Listing not found or closed.")
		return nil
	}
	if err != nil {
		return err
	}
	if listing.SellerID != user.ID {
		r.send(ctx, user.Phone, "You can only accept bids on your listings.")
		return nil
	}

	if _, err := r.store.AcceptBid(ctx, bid); err != nil {
		if errors.Is(err, store.ErrListingClosed) || errors.Is(err, store.ErrNotFound) {
			r.send(ctx, user.Phone, "Listing not found or closed.")
			return nil
		}
		return err
	}

	r.send(ctx, user.Phone, fmt.Sprintf("Accepted bid %d for listing %d. Listing closed.", bid.ID, listing.ID))

	buyer, err := r.store.GetUserByID(ctx, bid.BuyerID)
	if err != nil {
		// Unresolvable recipient: acceptance already committed, skip the
		// notification rather than surfacing an error.
		return nil
	}
	r.notifier.BidAccepted(ctx, buyer.Phone, bid)
	return nil
}
