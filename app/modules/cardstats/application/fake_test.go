package cardstatsservice

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
	cardstatsdb "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/repositories"
)

// ------------------------
// Fake Card Stats Repo
// ------------------------

// FakeCardStatsRepo serves source data from in-memory maps and keeps whatever
// the service persists, unless a ...Func override is set.
type FakeCardStatsRepo struct {
	mu    sync.Mutex
	trace []string

	MetaEvents  map[uuid.UUID][]uuid.UUID
	GroupEvents map[uuid.UUID][]uuid.UUID
	Events      map[uuid.UUID]cardstatsdomain.EventInfo
	EventDecks  map[uuid.UUID][]cardstatsdomain.DeckContext
	DeckCards   map[uuid.UUID][]cardstatsdomain.DeckCardRow

	Stats      map[cardstatsdomain.Granularity]map[cardstatsdomain.Scope]cardstatsdomain.StatMap
	Placements map[uuid.UUID]cardstatsdomain.PlacementStats
	Summaries  map[uuid.UUID]cardstatsdomain.GroupSummary

	GetDeckCardRowsFunc       func(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) ([]cardstatsdomain.DeckCardRow, error)
	GetMetasForEventFunc      func(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]uuid.UUID, error)
	GetEventCardStatsFunc     func(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, eventIDs []uuid.UUID) ([]cardstatsdomain.StatMap, error)
	ReplaceCardStatsFunc      func(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, scope cardstatsdomain.Scope, stats cardstatsdomain.StatMap) (int, error)
	ReplacePlacementStatsFunc func(ctx context.Context, db bun.IDB, groupID uuid.UUID, stats cardstatsdomain.PlacementStats) (int, error)
}

func NewFakeCardStatsRepo() *FakeCardStatsRepo {
	return &FakeCardStatsRepo{
		trace:       []string{},
		MetaEvents:  map[uuid.UUID][]uuid.UUID{},
		GroupEvents: map[uuid.UUID][]uuid.UUID{},
		Events:      map[uuid.UUID]cardstatsdomain.EventInfo{},
		EventDecks:  map[uuid.UUID][]cardstatsdomain.DeckContext{},
		DeckCards:   map[uuid.UUID][]cardstatsdomain.DeckCardRow{},
		Stats:       map[cardstatsdomain.Granularity]map[cardstatsdomain.Scope]cardstatsdomain.StatMap{},
		Placements:  map[uuid.UUID]cardstatsdomain.PlacementStats{},
		Summaries:   map[uuid.UUID]cardstatsdomain.GroupSummary{},
	}
}

func (f *FakeCardStatsRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// AddDeck registers a deck in its event along with its decklist.
func (f *FakeCardStatsRepo) AddDeck(deck cardstatsdomain.DeckContext, cards ...cardstatsdomain.DeckCardRow) {
	f.EventDecks[deck.EventID] = append(f.EventDecks[deck.EventID], deck)
	for i := range cards {
		cards[i].DeckID = deck.DeckID
	}
	f.DeckCards[deck.DeckID] = append(f.DeckCards[deck.DeckID], cards...)
}

// --- Repository Interface Implementation ---

func (f *FakeCardStatsRepo) GetMetaEventIDs(ctx context.Context, db bun.IDB, metaID uuid.UUID) ([]uuid.UUID, error) {
	f.record("GetMetaEventIDs")
	return f.MetaEvents[metaID], nil
}

func (f *FakeCardStatsRepo) GetGroupEventIDs(ctx context.Context, db bun.IDB, groupID uuid.UUID) ([]uuid.UUID, error) {
	f.record("GetGroupEventIDs")
	return f.GroupEvents[groupID], nil
}

func (f *FakeCardStatsRepo) GetMetasForEvent(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]uuid.UUID, error) {
	f.record("GetMetasForEvent")
	if f.GetMetasForEventFunc != nil {
		return f.GetMetasForEventFunc(ctx, db, eventID)
	}
	var out []uuid.UUID
	for metaID, events := range f.MetaEvents {
		if containsID(events, eventID) {
			out = append(out, metaID)
		}
	}
	return out, nil
}

func (f *FakeCardStatsRepo) GetGroupsForEvent(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]uuid.UUID, error) {
	f.record("GetGroupsForEvent")
	var out []uuid.UUID
	for groupID, events := range f.GroupEvents {
		if containsID(events, eventID) {
			out = append(out, groupID)
		}
	}
	return out, nil
}

func (f *FakeCardStatsRepo) GetDeckCardRows(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) ([]cardstatsdomain.DeckCardRow, error) {
	f.record("GetDeckCardRows")
	if f.GetDeckCardRowsFunc != nil {
		return f.GetDeckCardRowsFunc(ctx, db, eventIDs)
	}
	var out []cardstatsdomain.DeckCardRow
	for _, id := range eventIDs {
		for _, deck := range f.EventDecks[id] {
			out = append(out, f.DeckCards[deck.DeckID]...)
		}
	}
	return out, nil
}

func (f *FakeCardStatsRepo) GetDeckContexts(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) ([]cardstatsdomain.DeckContext, error) {
	f.record("GetDeckContexts")
	var out []cardstatsdomain.DeckContext
	for _, id := range eventIDs {
		out = append(out, f.EventDecks[id]...)
	}
	return out, nil
}

func (f *FakeCardStatsRepo) GetEventInfos(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) ([]cardstatsdomain.EventInfo, error) {
	f.record("GetEventInfos")
	var out []cardstatsdomain.EventInfo
	for _, id := range eventIDs {
		if ev, ok := f.Events[id]; ok {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *FakeCardStatsRepo) GetCardStats(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, scope cardstatsdomain.Scope) (cardstatsdomain.StatMap, error) {
	f.record("GetCardStats")
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.Stats[g][scope]; ok {
		return m, nil
	}
	return cardstatsdomain.StatMap{}, nil
}

func (f *FakeCardStatsRepo) GetEventCardStats(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, eventIDs []uuid.UUID) ([]cardstatsdomain.StatMap, error) {
	f.record("GetEventCardStats")
	if f.GetEventCardStatsFunc != nil {
		return f.GetEventCardStatsFunc(ctx, db, g, eventIDs)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []cardstatsdomain.StatMap
	for _, id := range eventIDs {
		if m, ok := f.Stats[g][cardstatsdomain.EventScope(id)]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *FakeCardStatsRepo) GetPlacementStats(ctx context.Context, db bun.IDB, groupID uuid.UUID) (cardstatsdomain.PlacementStats, error) {
	f.record("GetPlacementStats")
	return f.Placements[groupID], nil
}

func (f *FakeCardStatsRepo) GetGroupSummary(ctx context.Context, db bun.IDB, groupID uuid.UUID) (*cardstatsdomain.GroupSummary, error) {
	f.record("GetGroupSummary")
	summary, ok := f.Summaries[groupID]
	if !ok {
		return nil, cardstatsdb.ErrNotFound
	}
	return &summary, nil
}

func (f *FakeCardStatsRepo) ReplaceCardStats(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, scope cardstatsdomain.Scope, stats cardstatsdomain.StatMap) (int, error) {
	f.record("ReplaceCardStats:" + string(scope.Kind) + ":" + string(g))
	if f.ReplaceCardStatsFunc != nil {
		return f.ReplaceCardStatsFunc(ctx, db, g, scope, stats)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Stats[g] == nil {
		f.Stats[g] = map[cardstatsdomain.Scope]cardstatsdomain.StatMap{}
	}
	f.Stats[g][scope] = stats
	return len(stats), nil
}

func (f *FakeCardStatsRepo) ReplacePlacementStats(ctx context.Context, db bun.IDB, groupID uuid.UUID, stats cardstatsdomain.PlacementStats) (int, error) {
	f.record("ReplacePlacementStats")
	if f.ReplacePlacementStatsFunc != nil {
		return f.ReplacePlacementStatsFunc(ctx, db, groupID, stats)
	}
	f.Placements[groupID] = stats
	return len(stats), nil
}

func (f *FakeCardStatsRepo) ReplaceGroupSummary(ctx context.Context, db bun.IDB, groupID uuid.UUID, summary cardstatsdomain.GroupSummary) error {
	f.record("ReplaceGroupSummary")
	f.Summaries[groupID] = summary
	return nil
}

// --- Accessors for assertions ---

func (f *FakeCardStatsRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeCardStatsRepo) Persisted(g cardstatsdomain.Granularity, scope cardstatsdomain.Scope) (cardstatsdomain.StatMap, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.Stats[g][scope]
	return m, ok
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Ensure the fake actually satisfies the interface
var _ cardstatsdb.Repository = (*FakeCardStatsRepo)(nil)
