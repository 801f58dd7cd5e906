package cardstatsdomain

import "github.com/google/uuid"

// Board is the deck zone a card line is recorded in.
type Board string

const (
	BoardMain     Board = "main"
	BoardSide     Board = "side"
	BoardExcluded Board = "excluded"
)

// Counted reports whether rows on this board contribute to statistics.
func (b Board) Counted() bool {
	return b == BoardMain || b == BoardSide
}

// DeckCardRow is one line of a decklist. A card present in both main and
// side appears as two rows.
type DeckCardRow struct {
	DeckID   uuid.UUID
	CardID   string
	Board    Board
	Quantity int
}

// DeckContext carries the per-deck facts aggregation needs. Empty leader or
// base ids mean the value was never recorded; Placement is 0 when unknown.
type DeckContext struct {
	DeckID       uuid.UUID
	EventID      uuid.UUID
	LeaderCardID string
	BaseCardID   string
	RecordWin    int
	RecordLose   int
	Placement    int
}

// Valid reports whether the deck has both a leader and a base.
func (d DeckContext) Valid() bool { return d.LeaderCardID != "" && d.BaseCardID != "" }

// EventInfo is the event-level data the group summary needs.
type EventInfo struct {
	ID         uuid.UUID
	Imported   bool
	Attendance int
}
