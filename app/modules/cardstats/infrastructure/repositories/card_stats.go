package cardstatsdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

// statRow constrains generic helpers to the three per-granularity row models.
type statRow interface {
	CardStat | CardStatByLeader | CardStatByLeaderBase
}

func tableFor(g cardstatsdomain.Granularity) (string, error) {
	switch g {
	case cardstatsdomain.GranularityCard:
		return "card_stats", nil
	case cardstatsdomain.GranularityLeader:
		return "card_stats_by_leader", nil
	case cardstatsdomain.GranularityLeaderBase:
		return "card_stats_by_leader_base", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
}

// TableFor exposes the derived table backing a granularity, for metrics labels.
func TableFor(g cardstatsdomain.Granularity) string {
	table, err := tableFor(g)
	if err != nil {
		return string(g)
	}
	return table
}

func toRow[T statRow](scope cardstatsdomain.Scope, key cardstatsdomain.StatKey, s cardstatsdomain.CardStat) T {
	var row T
	switch r := any(&row).(type) {
	case *CardStat:
		*r = CardStat{
			ScopeKind: string(scope.Kind), ScopeID: scope.ID, CardID: key.CardID,
			CountMain: s.CountMain, CountSide: s.CountSide, DeckCount: s.DeckCount, MatchWin: s.MatchWin, MatchLose: s.MatchLose,
		}
	case *CardStatByLeader:
		*r = CardStatByLeader{
			ScopeKind: string(scope.Kind), ScopeID: scope.ID, LeaderCardID: key.LeaderCardID, CardID: key.CardID,
			CountMain: s.CountMain, CountSide: s.CountSide, DeckCount: s.DeckCount, MatchWin: s.MatchWin, MatchLose: s.MatchLose,
		}
	case *CardStatByLeaderBase:
		*r = CardStatByLeaderBase{
			ScopeKind: string(scope.Kind), ScopeID: scope.ID, LeaderCardID: key.LeaderCardID, BaseCardID: key.BaseCardID, CardID: key.CardID,
			CountMain: s.CountMain, CountSide: s.CountSide, DeckCount: s.DeckCount, MatchWin: s.MatchWin, MatchLose: s.MatchLose,
		}
	}
	return row
}

func fromRow[T statRow](row T) (uuid.UUID, cardstatsdomain.StatKey, cardstatsdomain.CardStat) {
	switch r := any(row).(type) {
	case CardStat:
		return r.ScopeID, cardstatsdomain.CardKey(r.CardID), cardstatsdomain.CardStat{
			CountMain: r.CountMain, CountSide: r.CountSide, DeckCount: r.DeckCount, MatchWin: r.MatchWin, MatchLose: r.MatchLose,
		}
	case CardStatByLeader:
		return r.ScopeID, cardstatsdomain.LeaderKey(r.LeaderCardID, r.CardID), cardstatsdomain.CardStat{
			CountMain: r.CountMain, CountSide: r.CountSide, DeckCount: r.DeckCount, MatchWin: r.MatchWin, MatchLose: r.MatchLose,
		}
	case CardStatByLeaderBase:
		return r.ScopeID, cardstatsdomain.LeaderBaseKey(r.LeaderCardID, r.BaseCardID, r.CardID), cardstatsdomain.CardStat{
			CountMain: r.CountMain, CountSide: r.CountSide, DeckCount: r.DeckCount, MatchWin: r.MatchWin, MatchLose: r.MatchLose,
		}
	}
	return uuid.Nil, cardstatsdomain.StatKey{}, cardstatsdomain.CardStat{}
}

// buildRows converts a map into rows in key order so inserts are deterministic.
func buildRows[T statRow](scope cardstatsdomain.Scope, stats cardstatsdomain.StatMap) []T {
	rows := make([]T, 0, len(stats))
	for _, key := range stats.SortedKeys() {
		rows = append(rows, toRow[T](scope, key, stats[key]))
	}
	return rows
}

func selectStats[T statRow](ctx context.Context, db bun.IDB, scopeKind cardstatsdomain.ScopeKind, scopeIDs []uuid.UUID) (map[uuid.UUID]cardstatsdomain.StatMap, error) {
	var rows []T
	err := db.NewSelect().
		Model(&rows).
		Where("?TableAlias.scope_kind = ?", string(scopeKind)).
		Where("?TableAlias.scope_id IN (?)", bun.In(scopeIDs)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]cardstatsdomain.StatMap)
	for _, row := range rows {
		scopeID, key, stat := fromRow(row)
		m, ok := out[scopeID]
		if !ok {
			m = cardstatsdomain.StatMap{}
			out[scopeID] = m
		}
		m[key] = stat
	}
	return out, nil
}

func (r *Impl) selectByGranularity(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, kind cardstatsdomain.ScopeKind, ids []uuid.UUID) (map[uuid.UUID]cardstatsdomain.StatMap, error) {
	switch g {
	case cardstatsdomain.GranularityCard:
		return selectStats[CardStat](ctx, db, kind, ids)
	case cardstatsdomain.GranularityLeader:
		return selectStats[CardStatByLeader](ctx, db, kind, ids)
	case cardstatsdomain.GranularityLeaderBase:
		return selectStats[CardStatByLeaderBase](ctx, db, kind, ids)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
}

func (r *Impl) GetCardStats(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, scope cardstatsdomain.Scope) (cardstatsdomain.StatMap, error) {
	db = r.resolveDB(db)
	byScope, err := r.selectByGranularity(ctx, db, g, scope.Kind, []uuid.UUID{scope.ID})
	if err != nil {
		return nil, fmt.Errorf("cardstatsdb.GetCardStats: %w", err)
	}
	if m, ok := byScope[scope.ID]; ok {
		return m, nil
	}
	return cardstatsdomain.StatMap{}, nil
}

func (r *Impl) GetEventCardStats(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, eventIDs []uuid.UUID) ([]cardstatsdomain.StatMap, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	byScope, err := r.selectByGranularity(ctx, db, g, cardstatsdomain.ScopeEvent, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("cardstatsdb.GetEventCardStats: %w", err)
	}
	out := make([]cardstatsdomain.StatMap, 0, len(byScope))
	seen := make(map[uuid.UUID]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if m, ok := byScope[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Impl) ReplaceCardStats(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, scope cardstatsdomain.Scope, stats cardstatsdomain.StatMap) (int, error) {
	db = r.resolveDB(db)
	table, err := tableFor(g)
	if err != nil {
		return 0, fmt.Errorf("cardstatsdb.ReplaceCardStats: %w", err)
	}

	var n int
	switch g {
	case cardstatsdomain.GranularityCard:
		n, err = replaceScopeRows(ctx, db, r.batchSize, table, scope, buildRows[CardStat](scope, stats))
	case cardstatsdomain.GranularityLeader:
		n, err = replaceScopeRows(ctx, db, r.batchSize, table, scope, buildRows[CardStatByLeader](scope, stats))
	case cardstatsdomain.GranularityLeaderBase:
		n, err = replaceScopeRows(ctx, db, r.batchSize, table, scope, buildRows[CardStatByLeaderBase](scope, stats))
	}
	if err != nil {
		return 0, fmt.Errorf("cardstatsdb.ReplaceCardStats(%s, %s): %w", table, scope, err)
	}
	return n, nil
}

func replaceScopeRows[T statRow](ctx context.Context, db bun.IDB, batchSize int, table string, scope cardstatsdomain.Scope, rows []T) (int, error) {
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockScope(ctx, tx, table, scope.String()); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*T)(nil)).
			Where("scope_kind = ?", string(scope.Kind)).
			Where("scope_id = ?", scope.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete previous rows: %w", err)
		}
		return insertInBatches(ctx, tx, rows, batchSize)
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// lockScope serializes writers of one (table, scope) across processes until
// the surrounding transaction ends.
func lockScope(ctx context.Context, tx bun.Tx, table, scope string) error {
	if _, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", table+"|"+scope).Exec(ctx); err != nil {
		return fmt.Errorf("failed to acquire scope lock: %w", err)
	}
	return nil
}

func insertInBatches[T any](ctx context.Context, tx bun.Tx, rows []T, batchSize int) error {
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		batch := rows[start:end]
		if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert rows %d-%d: %w", start, end, err)
		}
	}
	return nil
}
