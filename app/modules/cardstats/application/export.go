package cardstatsservice

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

var granularitySheets = map[cardstatsdomain.Granularity]string{
	cardstatsdomain.GranularityCard:       "Cards",
	cardstatsdomain.GranularityLeader:     "By Leader",
	cardstatsdomain.GranularityLeaderBase: "By Leader and Base",
}

func (s *CardStatsService) ExportWorkbook(ctx context.Context, scope cardstatsdomain.Scope, w io.Writer) error {
	_, err := withTelemetry(s, ctx, "ExportWorkbook", scope, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.exportWorkbook(ctx, scope, w)
	})
	return err
}

func (s *CardStatsService) exportWorkbook(ctx context.Context, scope cardstatsdomain.Scope, w io.Writer) error {
	totalDecks, err := s.totalDecks(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to count decks: %w", err)
	}

	book := cardstatsdomain.NewCardStatSet()
	for _, g := range cardstatsdomain.Granularities {
		stats, err := s.repo.GetCardStats(ctx, s.idb(), g, scope)
		if err != nil {
			return fmt.Errorf("failed to load %s stats: %w", g, err)
		}
		book.Set(g, stats)
	}

	var (
		placements cardstatsdomain.PlacementStats
		summary    *cardstatsdomain.GroupSummary
	)
	if scope.Kind == cardstatsdomain.ScopeGroup {
		if placements, err = s.repo.GetPlacementStats(ctx, s.idb(), scope.ID); err != nil {
			return fmt.Errorf("failed to load placement stats: %w", err)
		}
		if summary, err = s.GetGroupSummary(ctx, scope.ID); err != nil {
			return fmt.Errorf("failed to load group summary: %w", err)
		}
	}

	f, err := BuildWorkbook(book, totalDecks, placements, summary)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook lays out one sheet per granularity, plus placement and summary
// sheets when those are given.
func BuildWorkbook(set cardstatsdomain.CardStatSet, totalDecks int, placements cardstatsdomain.PlacementStats, summary *cardstatsdomain.GroupSummary) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, g := range cardstatsdomain.Granularities {
		sheet := granularitySheets[g]
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		header := []any{"Leader", "Base", "Card", "Main", "Side", "Decks", "Wins", "Losses", "Win rate", "Play rate"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, err
		}
		for r, row := range set.Get(g).Ranked() {
			values := []any{
				row.Key.LeaderCardID, row.Key.BaseCardID, row.Key.CardID,
				row.Stat.CountMain, row.Stat.CountSide, row.Stat.DeckCount,
				row.Stat.MatchWin, row.Stat.MatchLose,
				row.Stat.WinRate(), row.Stat.PlayRate(totalDecks),
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, err
			}
		}
	}

	if placements != nil {
		const sheet = "Placements"
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		header := []any{"Leader", "Base", "Wins", "Top 8", "Total"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, err
		}
		for r, key := range placements.SortedKeys() {
			p := placements[key]
			values := []any{key.LeaderCardID, key.BaseCardID, p.WinnerCount, p.Top8Count, p.TotalCount}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, err
			}
		}
	}

	if summary != nil {
		const sheet = "Summary"
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		rows := [][]any{
			{"Imported events", summary.ImportedEventCount},
			{"Total events", summary.TotalEventCount},
			{"Events with deck data", summary.EventsWithDeckDataCount},
			{"Decks", summary.TotalDeckCount},
			{"Attendance", summary.Attendance},
		}
		for r, values := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
