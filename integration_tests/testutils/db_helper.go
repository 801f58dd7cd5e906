package testutils

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	cardstatsmigrations "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/repositories/migrations"
)

// cardStatsTables lists derived tables first, then source tables.
var cardStatsTables = []string{
	"card_stats",
	"card_stats_by_leader",
	"card_stats_by_leader_base",
	"tournament_group_leader_base_stats",
	"tournament_group_stats",
	"deck_cards",
	"tournament_decks",
	"decks",
	"tournament_group_tournaments",
	"tournament_groups",
	"tournaments",
	"metas",
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, cardstatsmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run cardstats migrations: %w", err)
	}
	if group.ID == 0 {
		log.Println("No cardstats migrations to run")
	} else {
		log.Printf("Ran cardstats migrations group #%d", group.ID)
	}
	return nil
}

// TruncateTables truncates the specified tables
func TruncateTables(ctx context.Context, db bun.IDB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}

	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf("%q", table)
	}
	query := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " CASCADE"
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}

// CleanCardStatsTables truncates every source and derived table.
func CleanCardStatsTables(ctx context.Context, db bun.IDB) error {
	return TruncateTables(ctx, db, cardStatsTables...)
}

// CountRows counts rows in table for one scope column value.
func CountRows(ctx context.Context, db bun.IDB, table, column string, value any) (int, error) {
	return db.NewSelect().TableExpr(table).Where("? = ?", bun.Ident(column), value).Count(ctx)
}
