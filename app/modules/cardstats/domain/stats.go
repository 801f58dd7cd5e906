package cardstatsdomain

import (
	"cmp"
	"slices"
)

// Granularity selects one of the three card rollup shapes.
type Granularity string

const (
	GranularityCard       Granularity = "card"
	GranularityLeader     Granularity = "leader"
	GranularityLeaderBase Granularity = "leader_base"
)

// Granularities lists every card rollup shape in persistence order.
var Granularities = []Granularity{GranularityCard, GranularityLeader, GranularityLeaderBase}

func (g Granularity) Valid() bool {
	return g == GranularityCard || g == GranularityLeader || g == GranularityLeaderBase
}

// CardStat holds the five measures every card rollup row carries.
type CardStat struct {
	CountMain int
	CountSide int
	DeckCount int
	MatchWin  int
	MatchLose int
}

// Add sums o into s measure by measure.
func (s *CardStat) Add(o CardStat) {
	s.CountMain += o.CountMain
	s.CountSide += o.CountSide
	s.DeckCount += o.DeckCount
	s.MatchWin += o.MatchWin
	s.MatchLose += o.MatchLose
}

// WinRate is the quantity-weighted match win rate, 0 when no matches were recorded.
func (s CardStat) WinRate() float64 {
	total := s.MatchWin + s.MatchLose
	if total == 0 {
		return 0
	}
	return float64(s.MatchWin) / float64(total)
}

// PlayRate is the share of totalDecks that included the card.
func (s CardStat) PlayRate(totalDecks int) float64 {
	if totalDecks <= 0 {
		return 0
	}
	return float64(s.DeckCount) / float64(totalDecks)
}

// StatKey identifies a rollup row within a scope. Fields the granularity
// does not use stay empty.
type StatKey struct {
	LeaderCardID string
	BaseCardID   string
	CardID       string
}

func CardKey(cardID string) StatKey { return StatKey{CardID: cardID} }

func LeaderKey(leaderCardID, cardID string) StatKey {
	return StatKey{LeaderCardID: leaderCardID, CardID: cardID}
}

func LeaderBaseKey(leaderCardID, baseCardID, cardID string) StatKey {
	return StatKey{LeaderCardID: leaderCardID, BaseCardID: baseCardID, CardID: cardID}
}

func compareKeys(a, b StatKey) int {
	if c := cmp.Compare(a.LeaderCardID, b.LeaderCardID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.BaseCardID, b.BaseCardID); c != 0 {
		return c
	}
	return cmp.Compare(a.CardID, b.CardID)
}

// StatMap is one granularity's rollup for one scope.
type StatMap map[StatKey]CardStat

// SortedKeys returns the keys ordered by leader, base, then card.
func (m StatMap) SortedKeys() []StatKey {
	keys := make([]StatKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// KeyedStat pairs a key with its measures for ordered output.
type KeyedStat struct {
	Key  StatKey
	Stat CardStat
}

// Ranked orders rows by deck count descending, then by key.
func (m StatMap) Ranked() []KeyedStat {
	out := make([]KeyedStat, 0, len(m))
	for k, v := range m {
		out = append(out, KeyedStat{Key: k, Stat: v})
	}
	slices.SortFunc(out, func(a, b KeyedStat) int {
		if c := cmp.Compare(b.Stat.DeckCount, a.Stat.DeckCount); c != 0 {
			return c
		}
		return compareKeys(a.Key, b.Key)
	})
	return out
}

// CardStatSet bundles the three granularities for one scope.
type CardStatSet struct {
	Card       StatMap
	Leader     StatMap
	LeaderBase StatMap
}

func NewCardStatSet() CardStatSet {
	return CardStatSet{Card: StatMap{}, Leader: StatMap{}, LeaderBase: StatMap{}}
}

// Get returns the map for g, or nil for an unknown granularity.
func (s CardStatSet) Get(g Granularity) StatMap {
	switch g {
	case GranularityCard:
		return s.Card
	case GranularityLeader:
		return s.Leader
	case GranularityLeaderBase:
		return s.LeaderBase
	}
	return nil
}

// Set replaces the map for g.
func (s *CardStatSet) Set(g Granularity, m StatMap) {
	switch g {
	case GranularityCard:
		s.Card = m
	case GranularityLeader:
		s.Leader = m
	case GranularityLeaderBase:
		s.LeaderBase = m
	}
}
