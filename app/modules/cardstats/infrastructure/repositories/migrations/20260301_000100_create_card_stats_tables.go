package cardstatsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	cardstatsdb "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/repositories"
)

var derivedModels = []any{
	(*cardstatsdb.CardStat)(nil),
	(*cardstatsdb.CardStatByLeader)(nil),
	(*cardstatsdb.CardStatByLeaderBase)(nil),
	(*cardstatsdb.GroupLeaderBaseStat)(nil),
	(*cardstatsdb.GroupStat)(nil),
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating card statistics tables...")
			for _, model := range derivedModels {
				if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to create table for %T: %w", model, err)
				}
			}

			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_card_stats_rank ON card_stats(scope_kind, scope_id, deck_count DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_card_stats_by_leader_card ON card_stats_by_leader(scope_kind, scope_id, card_id)`,
				`CREATE INDEX IF NOT EXISTS idx_card_stats_by_leader_base_card ON card_stats_by_leader_base(scope_kind, scope_id, card_id)`,
			}
			for _, stmt := range indexes {
				if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
					return fmt.Errorf("failed to create index: %w", err)
				}
			}
			fmt.Println("Card statistics tables created successfully!")
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping card statistics tables...")
			for i := len(derivedModels) - 1; i >= 0; i-- {
				if _, err := db.NewDropTable().Model(derivedModels[i]).IfExists().Cascade().Exec(ctx); err != nil {
					return fmt.Errorf("failed to drop table for %T: %w", derivedModels[i], err)
				}
			}
			fmt.Println("Card statistics tables dropped successfully!")
			return nil
		},
	)
}
