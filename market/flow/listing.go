// Package flow implements the guided listing conversation: a strictly
// ordered wizard that collects one listing attribute per inbound message.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/agrisoko/sokobot/core/logger"
	"github.com/agrisoko/sokobot/market/format"
	"github.com/agrisoko/sokobot/market/model"
	"github.com/agrisoko/sokobot/market/notify"
	"github.com/agrisoko/sokobot/market/session"
	"github.com/agrisoko/sokobot/market/store"
)

// Step indices of the listing flow. Each step consumes exactly one message.
const (
	stepCommodity = iota
	stepQuantity
	stepUnit
	stepLocation
	stepQuality
	stepMinPrice
	stepDeadline
)

var prompts = map[int]string{
	stepCommodity: "1) Commodity? (e.g., MAIZE)",
	stepQuantity:  "2) Quantity? (number)",
	stepUnit:      "3) Unit? (e.g., KG, TON, CRATE)",
	stepLocation:  "4) Location/Region? (e.g., NAIROBI)",
	stepQuality:   "5) Quality grade? (or type 'skip')",
	stepMinPrice:  "6) Minimum price per unit? (number or 'skip')",
	stepDeadline:  "7) Bidding deadline in hours from now? (number, or 'skip')",
}

// Listing drives the listing flow state machine.
type Listing struct {
	store    store.Store
	sender   notify.Sender
	notifier *notify.Notifier
	now      func() time.Time
}

// NewListing wires the flow. A nil clock defaults to time.Now.
func NewListing(st store.Store, sender notify.Sender, notifier *notify.Notifier, now func() time.Time) *Listing {
	if now == nil {
		now = time.Now
	}
	return &Listing{store: st, sender: sender, notifier: notifier, now: now}
}

// Start puts the user at step 0 and prompts for the first field.
func (f *Listing) Start(ctx context.Context, user *model.User) error {
	if err := f.store.SaveSessionState(ctx, user.ID, session.StartListing()); err != nil {
		return err
	}
	f.send(ctx, user.Phone, "Listing flow started.\n"+prompts[stepCommodity])
	return nil
}

// Handle consumes one answer for the user's current step. Validation
// failures re-prompt the same step without advancing or mutating the draft.
func (f *Listing) Handle(ctx context.Context, user *model.User, st session.State, msg string) error {
	msg = strings.TrimSpace(msg)

	switch st.Step {
	case stepCommodity:
		if msg == "" {
			f.send(ctx, user.Phone, prompts[stepCommodity])
			return nil
		}
		v := strings.ToUpper(msg)
		st.Draft.Commodity = &v
		return f.advance(ctx, user, st)

	case stepQuantity:
		q, err := parseNumber(msg)
		if err != nil {
			f.send(ctx, user.Phone, "Please enter a number for quantity.")
			return nil
		}
		st.Draft.Quantity = &q
		return f.advance(ctx, user, st)

	case stepUnit:
		if msg == "" {
			f.send(ctx, user.Phone, prompts[stepUnit])
			return nil
		}
		v := strings.ToUpper(msg)
		st.Draft.Unit = &v
		return f.advance(ctx, user, st)

	case stepLocation:
		if msg == "" {
			f.send(ctx, user.Phone, prompts[stepLocation])
			return nil
		}
		v := strings.ToUpper(msg)
		st.Draft.Location = &v
		return f.advance(ctx, user, st)

	case stepQuality:
		if strings.EqualFold(msg, "skip") {
			st.Draft.Quality = nil
		} else {
			v := msg
			st.Draft.Quality = &v
		}
		return f.advance(ctx, user, st)

	case stepMinPrice:
		if strings.EqualFold(msg, "skip") {
			st.Draft.MinPrice = nil
		} else {
			p, err := parseNumber(msg)
			if err != nil {
				f.send(ctx, user.Phone, "Please enter a number or 'skip'.")
				return nil
			}
			st.Draft.MinPrice = &p
		}
		return f.advance(ctx, user, st)

	case stepDeadline:
		if !strings.EqualFold(msg, "skip") {
			h, err := parseNumber(msg)
			if err != nil {
				f.send(ctx, user.Phone, "Please enter a number or 'skip'.")
				return nil
			}
			st.Draft.DeadlineHours = &h
		}
		return f.complete(ctx, user, st)
	}

	// Unknown step index means the persisted state is corrupt; drop it and
	// answer with the generic fallback so the message is not left hanging.
	logger.Warn(ctx, "flow", "listing.step_unknown",
		slog.Int64("user_id", user.ID),
		slog.Int("step", st.Step),
	)
	if err := f.store.ClearSessionState(ctx, user.ID); err != nil {
		return err
	}
	f.send(ctx, user.Phone, "Unrecognized command. Send HELP for available commands.")
	return nil
}

func (f *Listing) advance(ctx context.Context, user *model.User, st session.State) error {
	st.Step++
	if err := f.store.SaveSessionState(ctx, user.ID, st); err != nil {
		return err
	}
	f.send(ctx, user.Phone, prompts[st.Step])
	return nil
}

func (f *Listing) complete(ctx context.Context, user *model.User, st session.State) error {
	var deadline *time.Time
	if st.Draft.DeadlineHours != nil {
		t := f.now().UTC().Add(time.Duration(*st.Draft.DeadlineHours * float64(time.Hour)))
		deadline = &t
	}

	listing := &model.Listing{
		SellerID:  user.ID,
		Commodity: format.DerefString(st.Draft.Commodity, ""),
		Quantity:  derefFloat(st.Draft.Quantity),
		Unit:      format.DerefString(st.Draft.Unit, ""),
		Quality:   st.Draft.Quality,
		Location:  format.DerefString(st.Draft.Location, ""),
		MinPrice:  st.Draft.MinPrice,
		Deadline:  deadline,
	}
	if err := f.store.CreateListing(ctx, listing); err != nil {
		return err
	}
	if err := f.store.ClearSessionState(ctx, user.ID); err != nil {
		return err
	}

	logger.Info(ctx, "flow", "listing.created",
		slog.Int64("listing_id", listing.ID),
		slog.Int64("seller_id", user.ID),
		slog.String("commodity", listing.Commodity),
	)

	f.send(ctx, user.Phone, fmt.Sprintf(
		"Listing created (ID %d): %s %s %s at %s. Min price: %s.",
		listing.ID, listing.Commodity, format.Number(listing.Quantity),
		listing.Unit, listing.Location,
		format.OptionalNumber(listing.MinPrice, "N/A"),
	))

	return f.notifier.ListingCreated(ctx, user, listing)
}

func (f *Listing) send(ctx context.Context, to, body string) {
	_ = f.sender.SendText(ctx, to, body)
}

func parseNumber(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
