package cardstatsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournament source tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS metas (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL
				);

				CREATE TABLE IF NOT EXISTS tournaments (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL,
					meta_id UUID REFERENCES metas(id) ON DELETE SET NULL,
					attendance INTEGER NOT NULL DEFAULT 0,
					imported BOOLEAN NOT NULL DEFAULT FALSE,
					date TIMESTAMPTZ
				);
				CREATE INDEX IF NOT EXISTS idx_tournaments_meta_id ON tournaments(meta_id);

				CREATE TABLE IF NOT EXISTS tournament_groups (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL
				);

				CREATE TABLE IF NOT EXISTS tournament_group_tournaments (
					group_id UUID NOT NULL REFERENCES tournament_groups(id) ON DELETE CASCADE,
					tournament_id UUID NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
					position INTEGER NOT NULL DEFAULT 0,
					PRIMARY KEY (group_id, tournament_id)
				);
				CREATE INDEX IF NOT EXISTS idx_tgt_tournament_id ON tournament_group_tournaments(tournament_id);
			`); err != nil {
				return fmt.Errorf("failed to create tournament tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS decks (
					id UUID PRIMARY KEY,
					leader_card_id TEXT,
					base_card_id TEXT
				);

				CREATE TABLE IF NOT EXISTS tournament_decks (
					tournament_id UUID NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
					deck_id UUID NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
					placement INTEGER,
					record_win INTEGER NOT NULL DEFAULT 0,
					record_lose INTEGER NOT NULL DEFAULT 0,
					record_draw INTEGER NOT NULL DEFAULT 0,
					PRIMARY KEY (tournament_id, deck_id)
				);
				CREATE INDEX IF NOT EXISTS idx_tournament_decks_deck_id ON tournament_decks(deck_id);

				CREATE TABLE IF NOT EXISTS deck_cards (
					deck_id UUID NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
					card_id TEXT NOT NULL,
					board TEXT NOT NULL CHECK (board IN ('main', 'side', 'excluded')),
					quantity INTEGER NOT NULL,
					PRIMARY KEY (deck_id, card_id, board)
				);
			`); err != nil {
				return fmt.Errorf("failed to create deck tables: %w", err)
			}

			fmt.Println("Tournament source tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping tournament source tables...")
		if _, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS deck_cards;
			DROP TABLE IF EXISTS tournament_decks;
			DROP TABLE IF EXISTS decks;
			DROP TABLE IF EXISTS tournament_group_tournaments;
			DROP TABLE IF EXISTS tournament_groups;
			DROP TABLE IF EXISTS tournaments;
			DROP TABLE IF EXISTS metas;
		`); err != nil {
			return fmt.Errorf("failed to drop tournament source tables: %w", err)
		}
		fmt.Println("Tournament source tables dropped successfully!")
		return nil
	})
}
