package cardstatsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

const (
	placementTable = "tournament_group_leader_base_stats"
	summaryTable   = "tournament_group_stats"
)

func (r *Impl) GetPlacementStats(ctx context.Context, db bun.IDB, groupID uuid.UUID) (cardstatsdomain.PlacementStats, error) {
	db = r.resolveDB(db)
	var rows []GroupLeaderBaseStat
	err := db.NewSelect().
		Model(&rows).
		Where("tglb.group_id = ?", groupID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("cardstatsdb.GetPlacementStats: %w", err)
	}
	out := make(cardstatsdomain.PlacementStats, len(rows))
	for _, row := range rows {
		out[cardstatsdomain.PlacementKey{LeaderCardID: row.LeaderCardID, BaseCardID: row.BaseCardID}] = cardstatsdomain.PlacementStat{
			WinnerCount: row.WinnerCount,
			Top8Count:   row.Top8Count,
			TotalCount:  row.TotalCount,
		}
	}
	return out, nil
}

func (r *Impl) GetGroupSummary(ctx context.Context, db bun.IDB, groupID uuid.UUID) (*cardstatsdomain.GroupSummary, error) {
	db = r.resolveDB(db)
	row := new(GroupStat)
	err := db.NewSelect().
		Model(row).
		Where("tgs.group_id = ?", groupID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cardstatsdb.GetGroupSummary: %w", err)
	}
	return &cardstatsdomain.GroupSummary{
		ImportedEventCount:      row.ImportedEventCount,
		TotalEventCount:         row.TotalEventCount,
		EventsWithDeckDataCount: row.EventsWithDeckDataCount,
		TotalDeckCount:          row.TotalDeckCount,
		Attendance:              row.Attendance,
	}, nil
}

func (r *Impl) ReplacePlacementStats(ctx context.Context, db bun.IDB, groupID uuid.UUID, stats cardstatsdomain.PlacementStats) (int, error) {
	db = r.resolveDB(db)
	rows := make([]GroupLeaderBaseStat, 0, len(stats))
	for _, key := range stats.SortedKeys() {
		s := stats[key]
		rows = append(rows, GroupLeaderBaseStat{
			GroupID:      groupID,
			LeaderCardID: key.LeaderCardID,
			BaseCardID:   key.BaseCardID,
			WinnerCount:  s.WinnerCount,
			Top8Count:    s.Top8Count,
			TotalCount:   s.TotalCount,
		})
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockScope(ctx, tx, placementTable, cardstatsdomain.GroupScope(groupID).String()); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*GroupLeaderBaseStat)(nil)).
			Where("group_id = ?", groupID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete previous rows: %w", err)
		}
		return insertInBatches(ctx, tx, rows, r.batchSize)
	})
	if err != nil {
		return 0, fmt.Errorf("cardstatsdb.ReplacePlacementStats: %w", err)
	}
	return len(rows), nil
}

func (r *Impl) ReplaceGroupSummary(ctx context.Context, db bun.IDB, groupID uuid.UUID, summary cardstatsdomain.GroupSummary) error {
	db = r.resolveDB(db)
	row := &GroupStat{
		GroupID:                 groupID,
		ImportedEventCount:      summary.ImportedEventCount,
		TotalEventCount:         summary.TotalEventCount,
		EventsWithDeckDataCount: summary.EventsWithDeckDataCount,
		TotalDeckCount:          summary.TotalDeckCount,
		Attendance:              summary.Attendance,
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockScope(ctx, tx, summaryTable, cardstatsdomain.GroupScope(groupID).String()); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*GroupStat)(nil)).
			Where("group_id = ?", groupID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete previous summary: %w", err)
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert summary: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cardstatsdb.ReplaceGroupSummary: %w", err)
	}
	return nil
}
