// Package notify selects recipients for marketplace events and issues the
// outbound sends. Delivery is sequential and best-effort: one failed send
// never blocks the rest of the recipient set.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrisoko/sokobot/core/logger"
	"github.com/agrisoko/sokobot/market/format"
	"github.com/agrisoko/sokobot/market/model"
	"github.com/agrisoko/sokobot/market/store"
)

// Sender delivers outbound text messages. Implemented by the WhatsApp client;
// tests substitute a recorder.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	BroadcastText(ctx context.Context, recipients []string, body string)
}

// Notifier fans out marketplace events to interested users.
type Notifier struct {
	store  store.Store
	sender Sender
}

// New builds a Notifier over the given store and sender.
func New(st store.Store, sender Sender) *Notifier {
	return &Notifier{store: st, sender: sender}
}

// ListingCreated announces a new listing to buyers with a matching active
// opt-in, falling back to all buyers, finally telling the seller nobody is
// registered. The seller's own phone is always excluded.
func (n *Notifier) ListingCreated(ctx context.Context, seller *model.User, listing *model.Listing) error {
	body := fmt.Sprintf(
		"New listing #%d: %s %s %s at %s.\nTo bid: BID %d <pricePerUnit> <quantity>",
		listing.ID, listing.Commodity, format.Number(listing.Quantity), listing.Unit,
		listing.Location, listing.ID,
	)

	buyers, err := n.store.OptedInBuyers(ctx, listing.Commodity, listing.Location)
	if err != nil {
		return err
	}
	recipients := phonesExcluding(buyers, seller.Phone)
	if len(recipients) == 0 {
		all, err := n.store.Buyers(ctx)
		if err != nil {
			return err
		}
		recipients = phonesExcluding(all, seller.Phone)
	}

	if len(recipients) == 0 {
		_ = n.sender.SendText(ctx, seller.Phone, "No buyers registered yet.")
		return nil
	}

	logger.Debug(ctx, "notify", "listing.fanout",
		slog.Int64("listing_id", listing.ID),
		slog.Int("recipients", len(recipients)),
	)
	n.sender.BroadcastText(ctx, recipients, body)
	return nil
}

// BidPlaced tells the listing's seller about a new bid. Skipped silently when
// the seller record or phone cannot be resolved.
func (n *Notifier) BidPlaced(ctx context.Context, listing *model.Listing, bid *model.Bid, bidderPhone string) {
	seller, err := n.store.GetUserByID(ctx, listing.SellerID)
	if err != nil || seller.Phone == "" {
		logger.Debug(ctx, "notify", "bid.seller_unresolved",
			slog.Int64("listing_id", listing.ID),
			slog.Int64("bid_id", bid.ID),
		)
		return
	}

	body := fmt.Sprintf(
		"New bid #%d on your listing %d: %s per %s, qty %s from %s.\nTo accept: ACCEPT %d",
		bid.ID, listing.ID, format.Number(bid.PricePerUnit), listing.Unit,
		format.Number(bid.Quantity), bidderPhone, bid.ID,
	)
	_ = n.sender.SendText(ctx, seller.Phone, body)
}

// BidAccepted tells the bidding buyer their bid won.
func (n *Notifier) BidAccepted(ctx context.Context, buyerPhone string, bid *model.Bid) {
	if buyerPhone == "" {
		return
	}
	body := fmt.Sprintf(
		"Your bid %d for listing %d was accepted. Seller will contact you.",
		bid.ID, bid.ListingID,
	)
	_ = n.sender.SendText(ctx, buyerPhone, body)
}

func phonesExcluding(users []model.User, excluded string) []string {
	phones := make([]string, 0, len(users))
	for _, u := range users {
		if u.Phone == "" || u.Phone == excluded {
			continue
		}
		phones = append(phones, u.Phone)
	}
	return phones
}
