package cardstatsdomain

import "github.com/google/uuid"

// EventAggregator builds event-level card rollups from raw decklist rows.
// It is the only consumer of DeckCardRow data.
type EventAggregator struct {
	canonicalBase BaseCanonicalizer
}

func NewEventAggregator(canonicalBase BaseCanonicalizer) *EventAggregator {
	if canonicalBase == nil {
		canonicalBase = IdentityBase
	}
	return &EventAggregator{canonicalBase: canonicalBase}
}

type deckKey struct {
	deckID uuid.UUID
	key    StatKey
}

// Aggregate computes all three granularities for one event. Win and loss
// totals are weighted by quantity; deck count rises once per (deck, key).
func (a *EventAggregator) Aggregate(rows []DeckCardRow, decks map[uuid.UUID]DeckContext) CardStatSet {
	set := NewCardStatSet()
	for _, g := range Granularities {
		set.Set(g, a.aggregate(g, rows, decks))
	}
	return set
}

func (a *EventAggregator) aggregate(g Granularity, rows []DeckCardRow, decks map[uuid.UUID]DeckContext) StatMap {
	out := StatMap{}
	seen := make(map[deckKey]struct{})

	for _, row := range rows {
		if !row.Board.Counted() || row.Quantity <= 0 {
			continue
		}
		deck, ok := decks[row.DeckID]
		if !ok {
			continue
		}
		key, ok := a.keyFor(g, deck, row.CardID)
		if !ok {
			continue
		}

		stat := out[key]
		if row.Board == BoardMain {
			stat.CountMain += row.Quantity
		} else {
			stat.CountSide += row.Quantity
		}
		stat.MatchWin += deck.RecordWin * row.Quantity
		stat.MatchLose += deck.RecordLose * row.Quantity

		dk := deckKey{deckID: row.DeckID, key: key}
		if _, dup := seen[dk]; !dup {
			seen[dk] = struct{}{}
			stat.DeckCount++
		}
		out[key] = stat
	}
	return out
}

func (a *EventAggregator) keyFor(g Granularity, deck DeckContext, cardID string) (StatKey, bool) {
	switch g {
	case GranularityCard:
		return CardKey(cardID), true
	case GranularityLeader:
		if !deck.Valid() {
			return StatKey{}, false
		}
		return LeaderKey(deck.LeaderCardID, cardID), true
	case GranularityLeaderBase:
		if !deck.Valid() {
			return StatKey{}, false
		}
		return LeaderBaseKey(deck.LeaderCardID, a.canonicalBase(deck.BaseCardID), cardID), true
	}
	return StatKey{}, false
}
