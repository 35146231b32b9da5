// Package session models the per-user conversation state and its persisted
// encoding. A user is either outside any flow or inside the listing flow at a
// specific step with a partially filled draft.
package session

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Flow names a multi-step guided interaction.
type Flow string

const (
	// FlowNone marks the "no active flow" state.
	FlowNone Flow = ""
	// FlowListing is the guided seller listing flow.
	FlowListing Flow = "list"
)

// ListingDraft holds the answers collected so far by the listing flow.
// Nil fields have not been answered yet; Quality and MinPrice stay nil when
// the user skips them.
type ListingDraft struct {
	Commodity     *string  `json:"commodity"`
	Quantity      *float64 `json:"quantity"`
	Unit          *string  `json:"unit"`
	Location      *string  `json:"location"`
	Quality       *string  `json:"quality"`
	MinPrice      *float64 `json:"min_price"`
	DeadlineHours *float64 `json:"deadline_hours"`
}

// State is the tagged conversation state for one user.
// Step and Draft are meaningful only when Flow != FlowNone.
type State struct {
	Flow  Flow
	Step  int
	Draft ListingDraft
}

// None returns the "no active flow" state.
func None() State {
	return State{}
}

// StartListing returns the initial listing flow state at step 0.
func StartListing() State {
	return State{Flow: FlowListing, Step: 0}
}

// Active reports whether the user is currently inside a flow.
func (s State) Active() bool {
	return s.Flow != FlowNone
}

// EncodeDraft serializes the draft for persistence.
func EncodeDraft(d ListingDraft) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", errors.Wrap(err, "session.EncodeDraft")
	}
	return string(b), nil
}

// DecodeDraft restores a draft from its persisted form. Empty input yields an
// empty draft.
func DecodeDraft(raw string) (ListingDraft, error) {
	var d ListingDraft
	if raw == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return ListingDraft{}, errors.Wrap(err, "session.DecodeDraft")
	}
	return d, nil
}
