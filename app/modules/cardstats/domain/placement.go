package cardstatsdomain

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// PlacementKey identifies a leader and canonical base pairing.
type PlacementKey struct {
	LeaderCardID string
	BaseCardID   string
}

// PlacementStat counts how often a pairing won, made top 8, or appeared.
type PlacementStat struct {
	WinnerCount int
	Top8Count   int
	TotalCount  int
}

type PlacementStats map[PlacementKey]PlacementStat

// SortedKeys orders keys by total appearances descending, then by ids.
func (p PlacementStats) SortedKeys() []PlacementKey {
	keys := make([]PlacementKey, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b PlacementKey) int {
		if c := cmp.Compare(p[b].TotalCount, p[a].TotalCount); c != 0 {
			return c
		}
		if c := cmp.Compare(a.LeaderCardID, b.LeaderCardID); c != 0 {
			return c
		}
		return cmp.Compare(a.BaseCardID, b.BaseCardID)
	})
	return keys
}

// GroupSummary holds the per-group counters.
type GroupSummary struct {
	ImportedEventCount      int
	TotalEventCount         int
	EventsWithDeckDataCount int
	TotalDeckCount          int
	Attendance              int
}

// PlacementAggregator works from raw deck placements, never from event rollups.
type PlacementAggregator struct {
	canonicalBase BaseCanonicalizer
}

func NewPlacementAggregator(canonicalBase BaseCanonicalizer) *PlacementAggregator {
	if canonicalBase == nil {
		canonicalBase = IdentityBase
	}
	return &PlacementAggregator{canonicalBase: canonicalBase}
}

// Aggregate counts placements for every valid deck.
func (a *PlacementAggregator) Aggregate(decks []DeckContext) PlacementStats {
	out := PlacementStats{}
	for _, deck := range decks {
		if !deck.Valid() {
			continue
		}
		key := PlacementKey{LeaderCardID: deck.LeaderCardID, BaseCardID: a.canonicalBase(deck.BaseCardID)}
		stat := out[key]
		stat.TotalCount++
		if deck.Placement == 1 {
			stat.WinnerCount++
		}
		if deck.Placement >= 1 && deck.Placement <= 8 {
			stat.Top8Count++
		}
		out[key] = stat
	}
	return out
}

// Summarize computes the group counters over the member events and their decks.
// Decks belonging to events outside the member set are ignored.
func (a *PlacementAggregator) Summarize(events []EventInfo, decks []DeckContext) GroupSummary {
	var summary GroupSummary
	members := make(map[uuid.UUID]struct{}, len(events))
	for _, ev := range events {
		if _, dup := members[ev.ID]; dup {
			continue
		}
		members[ev.ID] = struct{}{}
		summary.TotalEventCount++
		if ev.Imported {
			summary.ImportedEventCount++
		}
		summary.Attendance += ev.Attendance
	}

	withDecks := make(map[uuid.UUID]struct{})
	for _, deck := range decks {
		if !deck.Valid() {
			continue
		}
		if _, ok := members[deck.EventID]; !ok {
			continue
		}
		summary.TotalDeckCount++
		withDecks[deck.EventID] = struct{}{}
	}
	summary.EventsWithDeckDataCount = len(withDecks)
	return summary
}
