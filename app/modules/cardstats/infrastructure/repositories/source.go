package cardstatsdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

func (r *Impl) GetMetaEventIDs(ctx context.Context, db bun.IDB, metaID uuid.UUID) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var ids []uuid.UUID
	err := db.NewSelect().
		Model((*Tournament)(nil)).
		Column("t.id").
		Where("t.meta_id = ?", metaID).
		OrderExpr("t.date ASC NULLS LAST, t.id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("cardstatsdb.GetMetaEventIDs: %w", err)
	}
	return ids, nil
}

func (r *Impl) GetGroupEventIDs(ctx context.Context, db bun.IDB, groupID uuid.UUID) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var ids []uuid.UUID
	err := db.NewSelect().
		Model((*TournamentGroupTournament)(nil)).
		Column("tgt.tournament_id").
		Where("tgt.group_id = ?", groupID).
		OrderExpr("tgt.position ASC, tgt.tournament_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("cardstatsdb.GetGroupEventIDs: %w", err)
	}
	return ids, nil
}

func (r *Impl) GetMetasForEvent(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var ids []uuid.UUID
	err := db.NewSelect().
		Model((*Tournament)(nil)).
		Column("t.meta_id").
		Where("t.id = ?", eventID).
		Where("t.meta_id IS NOT NULL").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("cardstatsdb.GetMetasForEvent: %w", err)
	}
	return ids, nil
}

func (r *Impl) GetGroupsForEvent(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var ids []uuid.UUID
	err := db.NewSelect().
		Model((*TournamentGroupTournament)(nil)).
		Column("tgt.group_id").
		Where("tgt.tournament_id = ?", eventID).
		OrderExpr("tgt.group_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("cardstatsdb.GetGroupsForEvent: %w", err)
	}
	return ids, nil
}

// GetDeckCardRows returns every decklist row of decks registered in any of the events.
func (r *Impl) GetDeckCardRows(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) ([]cardstatsdomain.DeckCardRow, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)

	var cards []DeckCard
	err := db.NewSelect().
		Model(&cards).
		Where("dc.deck_id IN (SELECT td.deck_id FROM tournament_decks AS td WHERE td.tournament_id IN (?))", bun.In(eventIDs)).
		OrderExpr("dc.deck_id, dc.card_id, dc.board").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("cardstatsdb.GetDeckCardRows: %w", err)
	}

	rows := make([]cardstatsdomain.DeckCardRow, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, cardstatsdomain.DeckCardRow{
			DeckID:   c.DeckID,
			CardID:   c.CardID,
			Board:    cardstatsdomain.Board(c.Board),
			Quantity: c.Quantity,
		})
	}
	return rows, nil
}

type deckContextRow struct {
	DeckID       uuid.UUID `bun:"deck_id"`
	TournamentID uuid.UUID `bun:"tournament_id"`
	LeaderCardID *string   `bun:"leader_card_id"`
	BaseCardID   *string   `bun:"base_card_id"`
	Placement    *int      `bun:"placement"`
	RecordWin    int       `bun:"record_win"`
	RecordLose   int       `bun:"record_lose"`
}

// GetDeckContexts returns one context per (event, deck) registration, valid or not.
func (r *Impl) GetDeckContexts(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) ([]cardstatsdomain.DeckContext, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)

	var rows []deckContextRow
	err := db.NewSelect().
		TableExpr("tournament_decks AS td").
		ColumnExpr("td.deck_id, td.tournament_id, td.placement, td.record_win, td.record_lose").
		ColumnExpr("d.leader_card_id, d.base_card_id").
		Join("JOIN decks AS d ON d.id = td.deck_id").
		Where("td.tournament_id IN (?)", bun.In(eventIDs)).
		OrderExpr("td.tournament_id, td.deck_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("cardstatsdb.GetDeckContexts: %w", err)
	}

	out := make([]cardstatsdomain.DeckContext, 0, len(rows))
	for _, row := range rows {
		dc := cardstatsdomain.DeckContext{
			DeckID:     row.DeckID,
			EventID:    row.TournamentID,
			RecordWin:  row.RecordWin,
			RecordLose: row.RecordLose,
		}
		if row.LeaderCardID != nil {
			dc.LeaderCardID = *row.LeaderCardID
		}
		if row.BaseCardID != nil {
			dc.BaseCardID = *row.BaseCardID
		}
		if row.Placement != nil {
			dc.Placement = *row.Placement
		}
		out = append(out, dc)
	}
	return out, nil
}

func (r *Impl) GetEventInfos(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) ([]cardstatsdomain.EventInfo, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)

	var tournaments []Tournament
	err := db.NewSelect().
		Model(&tournaments).
		Where("t.id IN (?)", bun.In(eventIDs)).
		OrderExpr("t.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("cardstatsdb.GetEventInfos: %w", err)
	}

	out := make([]cardstatsdomain.EventInfo, 0, len(tournaments))
	for _, t := range tournaments {
		out = append(out, cardstatsdomain.EventInfo{ID: t.ID, Imported: t.Imported, Attendance: t.Attendance})
	}
	return out, nil
}
