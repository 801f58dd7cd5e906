package cardstatsdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Source tables. The import workflow owns these; the engine only reads them.

type Meta struct {
	bun.BaseModel `bun:"table:metas,alias:m"`

	ID   uuid.UUID `bun:"id,pk,type:uuid"`
	Name string    `bun:"name,notnull"`
}

type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid"`
	Name       string     `bun:"name,notnull"`
	MetaID     *uuid.UUID `bun:"meta_id,type:uuid"`
	Attendance int        `bun:"attendance,notnull,default:0"`
	Imported   bool       `bun:"imported,notnull,default:false"`
	Date       time.Time  `bun:"date,nullzero"`
}

type TournamentGroup struct {
	bun.BaseModel `bun:"table:tournament_groups,alias:tg"`

	ID   uuid.UUID `bun:"id,pk,type:uuid"`
	Name string    `bun:"name,notnull"`
}

type TournamentGroupTournament struct {
	bun.BaseModel `bun:"table:tournament_group_tournaments,alias:tgt"`

	GroupID      uuid.UUID `bun:"group_id,pk,type:uuid"`
	TournamentID uuid.UUID `bun:"tournament_id,pk,type:uuid"`
	Position     int       `bun:"position,notnull,default:0"`
}

type Deck struct {
	bun.BaseModel `bun:"table:decks,alias:d"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	LeaderCardID *string   `bun:"leader_card_id"`
	BaseCardID   *string   `bun:"base_card_id"`
}

type TournamentDeck struct {
	bun.BaseModel `bun:"table:tournament_decks,alias:td"`

	TournamentID uuid.UUID `bun:"tournament_id,pk,type:uuid"`
	DeckID       uuid.UUID `bun:"deck_id,pk,type:uuid"`
	Placement    *int      `bun:"placement"`
	RecordWin    int       `bun:"record_win,notnull,default:0"`
	RecordLose   int       `bun:"record_lose,notnull,default:0"`
	RecordDraw   int       `bun:"record_draw,notnull,default:0"`
}

type DeckCard struct {
	bun.BaseModel `bun:"table:deck_cards,alias:dc"`

	DeckID   uuid.UUID `bun:"deck_id,pk,type:uuid"`
	CardID   string    `bun:"card_id,pk"`
	Board    string    `bun:"board,pk"`
	Quantity int       `bun:"quantity,notnull"`
}

// Derived tables. Rows exist only as the output of a replace transaction and
// carry no timestamps, so recomputing unchanged input rewrites identical rows.

type CardStat struct {
	bun.BaseModel `bun:"table:card_stats,alias:cs"`

	ScopeKind string    `bun:"scope_kind,pk"`
	ScopeID   uuid.UUID `bun:"scope_id,pk,type:uuid"`
	CardID    string    `bun:"card_id,pk"`
	CountMain int       `bun:"count_main,notnull"`
	CountSide int       `bun:"count_side,notnull"`
	DeckCount int       `bun:"deck_count,notnull"`
	MatchWin  int       `bun:"match_win,notnull"`
	MatchLose int       `bun:"match_lose,notnull"`
}

type CardStatByLeader struct {
	bun.BaseModel `bun:"table:card_stats_by_leader,alias:csl"`

	ScopeKind    string    `bun:"scope_kind,pk"`
	ScopeID      uuid.UUID `bun:"scope_id,pk,type:uuid"`
	LeaderCardID string    `bun:"leader_card_id,pk"`
	CardID       string    `bun:"card_id,pk"`
	CountMain    int       `bun:"count_main,notnull"`
	CountSide    int       `bun:"count_side,notnull"`
	DeckCount    int       `bun:"deck_count,notnull"`
	MatchWin     int       `bun:"match_win,notnull"`
	MatchLose    int       `bun:"match_lose,notnull"`
}

type CardStatByLeaderBase struct {
	bun.BaseModel `bun:"table:card_stats_by_leader_base,alias:cslb"`

	ScopeKind    string    `bun:"scope_kind,pk"`
	ScopeID      uuid.UUID `bun:"scope_id,pk,type:uuid"`
	LeaderCardID string    `bun:"leader_card_id,pk"`
	BaseCardID   string    `bun:"base_card_id,pk"`
	CardID       string    `bun:"card_id,pk"`
	CountMain    int       `bun:"count_main,notnull"`
	CountSide    int       `bun:"count_side,notnull"`
	DeckCount    int       `bun:"deck_count,notnull"`
	MatchWin     int       `bun:"match_win,notnull"`
	MatchLose    int       `bun:"match_lose,notnull"`
}

type GroupLeaderBaseStat struct {
	bun.BaseModel `bun:"table:tournament_group_leader_base_stats,alias:tglb"`

	GroupID      uuid.UUID `bun:"group_id,pk,type:uuid"`
	LeaderCardID string    `bun:"leader_card_id,pk"`
	BaseCardID   string    `bun:"base_card_id,pk"`
	WinnerCount  int       `bun:"winner_count,notnull"`
	Top8Count    int       `bun:"top8_count,notnull"`
	TotalCount   int       `bun:"total_count,notnull"`
}

type GroupStat struct {
	bun.BaseModel `bun:"table:tournament_group_stats,alias:tgs"`

	GroupID                 uuid.UUID `bun:"group_id,pk,type:uuid"`
	ImportedEventCount      int       `bun:"imported_event_count,notnull"`
	TotalEventCount         int       `bun:"total_event_count,notnull"`
	EventsWithDeckDataCount int       `bun:"events_with_deck_data_count,notnull"`
	TotalDeckCount          int       `bun:"total_deck_count,notnull"`
	Attendance              int       `bun:"attendance,notnull"`
}
