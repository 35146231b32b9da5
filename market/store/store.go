// Package store persists marketplace entities and conversation state in
// Postgres via sqlx.
package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/agrisoko/sokobot/market/model"
	"github.com/agrisoko/sokobot/market/session"
)

var (
	// ErrNotFound signals a lookup by id that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrListingClosed signals an accept attempt against a listing that is no
	// longer open.
	ErrListingClosed = errors.New("listing closed")
)

// Store is the persistence surface the router and flow depend on.
type Store interface {
	GetOrCreateUser(ctx context.Context, phone string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	SetUserRole(ctx context.Context, userID int64, role model.Role) error

	AddOptIn(ctx context.Context, userID int64, commodity, region string) (*model.OptIn, error)

	SessionState(ctx context.Context, userID int64) (session.State, error)
	SaveSessionState(ctx context.Context, userID int64, st session.State) error
	ClearSessionState(ctx context.Context, userID int64) error

	CreateListing(ctx context.Context, listing *model.Listing) error
	GetListing(ctx context.Context, id int64) (*model.Listing, error)
	OpenListings(ctx context.Context) ([]model.Listing, error)
	OpenListingsMatchingOptIns(ctx context.Context, userID int64) ([]model.Listing, error)

	CreateBid(ctx context.Context, bid *model.Bid) error
	GetBid(ctx context.Context, id int64) (*model.Bid, error)
	// AcceptBid marks the bid accepted, rejects placed siblings, and closes
	// the listing in one transaction. Returns the number of rejected
	// siblings, or ErrListingClosed when the listing is not open anymore.
	AcceptBid(ctx context.Context, bid *model.Bid) (int64, error)

	OptedInBuyers(ctx context.Context, commodity, region string) ([]model.User, error)
	Buyers(ctx context.Context) ([]model.User, error)
}

// SQLStore implements Store on top of a sqlx database handle.
type SQLStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLStore)(nil)

// New wraps the given database handle.
func New(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}
