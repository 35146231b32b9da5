package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string   { return &s }
func numf(f float64) *float64 { return &f }

func TestDraftRoundTripPreservesFields(t *testing.T) {
	// Simulate the draft growing one answer per step and make sure no
	// previously collected field is lost across encode/decode.
	draft := ListingDraft{}
	mutations := []func(*ListingDraft){
		func(d *ListingDraft) { d.Commodity = strp("MAIZE") },
		func(d *ListingDraft) { d.Quantity = numf(100) },
		func(d *ListingDraft) { d.Unit = strp("KG") },
		func(d *ListingDraft) { d.Location = strp("NAIROBI") },
		func(d *ListingDraft) { d.Quality = strp("Grade A") },
		func(d *ListingDraft) { d.MinPrice = numf(42.5) },
		func(d *ListingDraft) { d.DeadlineHours = numf(48) },
	}

	for i, mutate := range mutations {
		mutate(&draft)

		raw, err := EncodeDraft(draft)
		require.NoError(t, err, "step %d", i)

		got, err := DecodeDraft(raw)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, draft, got, "step %d", i)
	}
}

func TestDraftSkippedFieldsStayNil(t *testing.T) {
	draft := ListingDraft{
		Commodity: strp("BEANS"),
		Quantity:  numf(10),
		Unit:      strp("CRATE"),
		Location:  strp("KISUMU"),
	}
	raw, err := EncodeDraft(draft)
	require.NoError(t, err)

	got, err := DecodeDraft(raw)
	require.NoError(t, err)
	assert.Nil(t, got.Quality)
	assert.Nil(t, got.MinPrice)
	assert.Nil(t, got.DeadlineHours)
}

func TestDecodeDraftEmpty(t *testing.T) {
	got, err := DecodeDraft("")
	require.NoError(t, err)
	assert.Equal(t, ListingDraft{}, got)
}

func TestDecodeDraftRejectsGarbage(t *testing.T) {
	_, err := DecodeDraft("{not json")
	assert.Error(t, err)
}

func TestStateTagging(t *testing.T) {
	assert.False(t, None().Active())

	st := StartListing()
	assert.True(t, st.Active())
	assert.Equal(t, FlowListing, st.Flow)
	assert.Equal(t, 0, st.Step)
}
