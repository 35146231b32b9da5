// Package model defines the persisted marketplace entities.
package model

import (
	"strings"
	"time"
)

// Role classifies a user as buyer or seller.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ParseRole maps free-form command input to a Role.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleBuyer):
		return RoleBuyer, true
	case string(RoleSeller):
		return RoleSeller, true
	}
	return "", false
}

// UserStatusActive is the only status the bot assigns; other values are
// administrative.
const UserStatusActive = "active"

// ListingStatus tracks the lifecycle of a sell offer.
type ListingStatus string

const (
	ListingOpen   ListingStatus = "open"
	ListingClosed ListingStatus = "closed"
)

// BidStatus tracks the lifecycle of a bid. Placed is the only non-terminal state.
type BidStatus string

const (
	BidPlaced   BidStatus = "placed"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

// User is keyed by a unique phone identifier. Created on first inbound
// message with the buyer role; the role is mutable via JOIN.
type User struct {
	ID        int64     `db:"id"`
	Phone     string    `db:"phone"`
	Role      Role      `db:"role"`
	Region    *string   `db:"region"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// OptIn is a standing subscription to a commodity/region combination.
// Commodity and region are stored uppercased for case-insensitive matching.
type OptIn struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Commodity string    `db:"commodity"`
	Region    string    `db:"region"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

// Listing is a sell offer created through the guided listing flow.
type Listing struct {
	ID        int64         `db:"id"`
	SellerID  int64         `db:"seller_id"`
	Commodity string        `db:"commodity"`
	Quantity  float64       `db:"quantity"`
	Unit      string        `db:"unit"`
	Quality   *string       `db:"quality"`
	Location  string        `db:"location"`
	MinPrice  *float64      `db:"min_price"`
	Deadline  *time.Time    `db:"deadline"`
	Status    ListingStatus `db:"status"`
	CreatedAt time.Time     `db:"created_at"`
}

// Bid is an offer against an open listing.
type Bid struct {
	ID           int64     `db:"id"`
	ListingID    int64     `db:"listing_id"`
	BuyerID      int64     `db:"buyer_id"`
	PricePerUnit float64   `db:"price_per_unit"`
	Quantity     float64   `db:"quantity"`
	Note         *string   `db:"note"`
	Status       BidStatus `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
}
