package cardstatsdomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestPlacementAggregator_Aggregate(t *testing.T) {
	canon := NewBaseCanonicalizer(map[string]string{"base-common": "aspect-vigilance", "base-common-alt": "aspect-vigilance"})
	decks := []DeckContext{
		{DeckID: deck1, EventID: event, LeaderCardID: "L1", BaseCardID: "base-common", Placement: 1},
		{DeckID: deck2, EventID: event, LeaderCardID: "L1", BaseCardID: "base-common-alt", Placement: 8},
		{DeckID: deck3, EventID: event, LeaderCardID: "L1", BaseCardID: "base-common", Placement: 9},
		{DeckID: uuid.New(), EventID: event, LeaderCardID: "L2", BaseCardID: "B2"},
		{DeckID: uuid.New(), EventID: event, LeaderCardID: "L2", Placement: 1},
	}

	got := NewPlacementAggregator(canon).Aggregate(decks)

	want := PlacementStats{
		{LeaderCardID: "L1", BaseCardID: "aspect-vigilance"}: {WinnerCount: 1, Top8Count: 2, TotalCount: 3},
		{LeaderCardID: "L2", BaseCardID: "B2"}:               {TotalCount: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("placement mismatch (-want +got):\n%s", diff)
	}
}

func TestPlacementAggregator_Summarize(t *testing.T) {
	e1, e2, e3 := uuid.New(), uuid.New(), uuid.New()
	events := []EventInfo{
		{ID: e1, Imported: true, Attendance: 32},
		{ID: e2, Imported: false, Attendance: 16},
		{ID: e3, Imported: true, Attendance: 0},
	}
	decks := []DeckContext{
		{DeckID: deck1, EventID: e1, LeaderCardID: "L1", BaseCardID: "B1"},
		{DeckID: deck2, EventID: e1, LeaderCardID: "L1", BaseCardID: "B1"},
		{DeckID: deck3, EventID: e2, LeaderCardID: "L1"},
		{DeckID: uuid.New(), EventID: uuid.New(), LeaderCardID: "L9", BaseCardID: "B9"},
	}

	got := NewPlacementAggregator(nil).Summarize(events, decks)

	want := GroupSummary{
		ImportedEventCount:      2,
		TotalEventCount:         3,
		EventsWithDeckDataCount: 1,
		TotalDeckCount:          2,
		Attendance:              48,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestPlacementAggregator_EmptyGroup(t *testing.T) {
	agg := NewPlacementAggregator(nil)
	if got := agg.Aggregate(nil); len(got) != 0 {
		t.Fatalf("expected no placements, got %v", got)
	}
	if got := agg.Summarize(nil, nil); got != (GroupSummary{}) {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}
