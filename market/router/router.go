// Package router classifies inbound messages into commands, flow
// continuations, or a fallback, and dispatches them.
package router

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/agrisoko/sokobot/core/logger"
	"github.com/agrisoko/sokobot/market/flow"
	"github.com/agrisoko/sokobot/market/model"
	"github.com/agrisoko/sokobot/market/notify"
	"github.com/agrisoko/sokobot/market/session"
	"github.com/agrisoko/sokobot/market/store"
)

const helpText = "Commands:\n" +
	"- HELP\n" +
	"- JOIN buyer | JOIN seller\n" +
	"- SUBSCRIBE <commodity> <region>\n" +
	"- LISTINGS (see open listings)\n" +
	"- LIST (seller listing flow)\n" +
	"- BID <listingId> <pricePerUnit> <quantity>\n" +
	"- ACCEPT <bidId> (seller)\n"

// Router is the single entry point for inbound messages.
type Router struct {
	store    store.Store
	sender   notify.Sender
	listing  *flow.Listing
	notifier *notify.Notifier
	locks    keyedMutex
}

// New wires the router with its collaborators.
func New(st store.Store, sender notify.Sender, listing *flow.Listing, notifier *notify.Notifier) *Router {
	return &Router{
		store:    st,
		sender:   sender,
		listing:  listing,
		notifier: notifier,
	}
}

// HandleMessage processes one inbound message from fromPhone to completion:
// user resolution, classification, side effects, session persistence.
// Messages from the same phone are serialized within this process; storage
// failures propagate and abort the remainder of the invocation.
func (r *Router) HandleMessage(ctx context.Context, fromPhone, text string) error {
	unlock := r.locks.lock(fromPhone)
	defer unlock()

	ctx = logger.WithPhone(ctx, fromPhone)

	user, err := r.store.GetOrCreateUser(ctx, fromPhone)
	if err != nil {
		return err
	}

	msg := strings.TrimSpace(text)
	upper := strings.ToUpper(msg)

	// Global commands win over an active flow, silently abandoning it; a
	// later LIST overwrites the stale session.
	switch {
	case strings.HasPrefix(upper, "HELP") || msg == "?":
		return r.run(ctx, "help", func() error { return r.handleHelp(ctx, user) })
	case strings.HasPrefix(upper, "LISTINGS"):
		return r.run(ctx, "listings", func() error { return r.handleListings(ctx, user) })
	case strings.HasPrefix(upper, "JOIN"):
		return r.run(ctx, "join", func() error { return r.handleJoin(ctx, user, msg) })
	case strings.HasPrefix(upper, "SUBSCRIBE"):
		return r.run(ctx, "subscribe", func() error { return r.handleSubscribe(ctx, user, msg) })
	case strings.HasPrefix(upper, "LIST"):
		return r.run(ctx, "list", func() error { return r.handleListStart(ctx, user) })
	}

	st, err := r.store.SessionState(ctx, user.ID)
	if err != nil {
		return err
	}
	if st.Flow == session.FlowListing {
		return r.run(ctx, "flow.listing", func() error { return r.listing.Handle(ctx, user, st, msg) })
	}

	switch {
	case strings.HasPrefix(upper, "BID"):
		return r.run(ctx, "bid", func() error { return r.handleBid(ctx, user, msg) })
	case strings.HasPrefix(upper, "ACCEPT"):
		return r.run(ctx, "accept", func() error { return r.handleAccept(ctx, user, msg) })
	}

	return r.run(ctx, "fallback", func() error {
		r.send(ctx, user.Phone, "Unrecognized command. Send HELP for available commands.")
		return nil
	})
}

// run executes a handler and emits a single summary log line.
func (r *Router) run(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()

	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("handler", name),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	}
	if phone := logger.PhoneFrom(ctx); phone != "" {
		attrs = append(attrs, slog.String("phone", logger.SanitizeLimit(phone, 32)))
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	logger.Info(ctx, "router", "handler.handled", attrs...)
	return err
}

// send delivers a reply; transport failures are logged by the sender and do
// not affect routing.
func (r *Router) send(ctx context.Context, to, body string) {
	_ = r.sender.SendText(ctx, to, body)
}

func (r *Router) handleHelp(ctx context.Context, user *model.User) error {
	r.send(ctx, user.Phone, helpText)
	return nil
}
