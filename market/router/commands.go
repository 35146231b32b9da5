package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/agrisoko/sokobot/market/model"
)

func (r *Router) handleListings(ctx context.Context, user *model.User) error {
	// Opt-in matched listings first; fall back to everything open.
	listings, err := r.store.OpenListingsMatchingOptIns(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		listings, err = r.store.OpenListings(ctx)
		if err != nil {
			return err
		}
	}
	if len(listings) == 0 {
		r.send(ctx, user.Phone, "No open listings right now.")
		return nil
	}

	header := fmt.Sprintf("Open listings (%d):", len(listings))
	for _, chunk := range chunkListings(listings, listingsChunkSize) {
		r.send(ctx, user.Phone, header+"\n"+strings.Join(chunk, "\n"))
	}
	r.send(ctx, user.Phone, "To bid: BID <listingId> <pricePerUnit> <quantity>")
	return nil
}

func (r *Router) handleJoin(ctx context.Context, user *model.User, msg string) error {
	parts := strings.Fields(msg)
	if len(parts) < 2 {
		r.send(ctx, user.Phone, "Usage: JOIN buyer | JOIN seller")
		return nil
	}
	role, ok := model.ParseRole(parts[1])
	if !ok {
		r.send(ctx, user.Phone, "Usage: JOIN buyer | JOIN seller")
		return nil
	}

	if err := r.store.SetUserRole(ctx, user.ID, role); err != nil {
		return err
	}
	r.send(ctx, user.Phone, fmt.Sprintf("You are registered as %s. Send HELP for commands.", role))
	return nil
}

func (r *Router) handleSubscribe(ctx context.Context, user *model.User, msg string) error {
	parts := strings.Fields(msg)
	if len(parts) < 3 {
		r.send(ctx, user.Phone, "Usage: SUBSCRIBE <commodity> <region>")
		return nil
	}
	commodity := parts[1]
	region := strings.Join(parts[2:], " ")

	if _, err := r.store.AddOptIn(ctx, user.ID, commodity, region); err != nil {
		return err
	}
	r.send(ctx, user.Phone, fmt.Sprintf("Subscribed to %s in %s.",
		strings.ToUpper(commodity), strings.ToUpper(region)))
	return nil
}

func (r *Router) handleListStart(ctx context.Context, user *model.User) error {
	if user.Role != model.RoleSeller {
		r.send(ctx, user.Phone, "Only sellers can list. Send 'JOIN seller' to switch.")
		return nil
	}
	return r.listing.Start(ctx, user)
}
