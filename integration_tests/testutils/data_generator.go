package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	cardstatsdb "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/repositories"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Fixture is a batch of source rows ready to insert.
type Fixture struct {
	Metas           []cardstatsdb.Meta
	Tournaments     []cardstatsdb.Tournament
	Groups          []cardstatsdb.TournamentGroup
	GroupMembers    []cardstatsdb.TournamentGroupTournament
	Decks           []cardstatsdb.Deck
	TournamentDecks []cardstatsdb.TournamentDeck
	DeckCards       []cardstatsdb.DeckCard
}

// DeckSpec describes one hand-built deck entry.
type DeckSpec struct {
	Leader     string
	Base       string
	Main       map[string]int
	Side       map[string]int
	Win, Lose  int
	Placement  *int
	NoDeckData bool
}

func (g *TestDataGenerator) cardID() string {
	return fmt.Sprintf("%s_%03d", g.faker.RandomString([]string{"SOR", "SHD", "TWI", "JTL"}), g.faker.Number(1, 250))
}

// Meta adds a meta.
func (g *TestDataGenerator) Meta(f *Fixture) uuid.UUID {
	m := cardstatsdb.Meta{ID: uuid.New(), Name: g.faker.Company()}
	f.Metas = append(f.Metas, m)
	return m.ID
}

// Tournament adds an imported tournament, optionally in a meta.
func (g *TestDataGenerator) Tournament(f *Fixture, metaID *uuid.UUID) uuid.UUID {
	t := cardstatsdb.Tournament{
		ID:         uuid.New(),
		Name:       g.faker.City() + " Showdown",
		MetaID:     metaID,
		Attendance: g.faker.Number(8, 128),
		Imported:   true,
		Date:       g.faker.Date(),
	}
	f.Tournaments = append(f.Tournaments, t)
	return t.ID
}

// Group adds a tournament group containing eventIDs in order.
func (g *TestDataGenerator) Group(f *Fixture, eventIDs ...uuid.UUID) uuid.UUID {
	grp := cardstatsdb.TournamentGroup{ID: uuid.New(), Name: g.faker.Adjective() + " Circuit"}
	f.Groups = append(f.Groups, grp)
	for i, id := range eventIDs {
		f.GroupMembers = append(f.GroupMembers, cardstatsdb.TournamentGroupTournament{GroupID: grp.ID, TournamentID: id, Position: i})
	}
	return grp.ID
}

// Deck adds a hand-built deck to a tournament.
func (g *TestDataGenerator) Deck(f *Fixture, tournamentID uuid.UUID, spec DeckSpec) uuid.UUID {
	d := cardstatsdb.Deck{ID: uuid.New()}
	if spec.Leader != "" {
		d.LeaderCardID = &spec.Leader
	}
	if spec.Base != "" {
		d.BaseCardID = &spec.Base
	}
	f.Decks = append(f.Decks, d)
	if !spec.NoDeckData {
		f.TournamentDecks = append(f.TournamentDecks, cardstatsdb.TournamentDeck{
			TournamentID: tournamentID,
			DeckID:       d.ID,
			Placement:    spec.Placement,
			RecordWin:    spec.Win,
			RecordLose:   spec.Lose,
		})
	}
	for card, qty := range spec.Main {
		f.DeckCards = append(f.DeckCards, cardstatsdb.DeckCard{DeckID: d.ID, CardID: card, Board: "main", Quantity: qty})
	}
	for card, qty := range spec.Side {
		f.DeckCards = append(f.DeckCards, cardstatsdb.DeckCard{DeckID: d.ID, CardID: card, Board: "side", Quantity: qty})
	}
	return d.ID
}

// RandomDecks adds n random decks to a tournament, each with mainCards distinct main-board cards.
func (g *TestDataGenerator) RandomDecks(f *Fixture, tournamentID uuid.UUID, n, mainCards int) {
	leaders := []string{"SOR_005", "SOR_010", "SHD_006", "TWI_017"}
	bases := []string{"SOR_020", "SOR_023", "SHD_021", "TWI_026"}
	for i := 0; i < n; i++ {
		main := make(map[string]int, mainCards)
		for len(main) < mainCards {
			main[g.cardID()] = g.faker.Number(1, 3)
		}
		placement := i + 1
		g.Deck(f, tournamentID, DeckSpec{
			Leader:    g.faker.RandomString(leaders),
			Base:      g.faker.RandomString(bases),
			Main:      main,
			Win:       g.faker.Number(0, 7),
			Lose:      g.faker.Number(0, 7),
			Placement: &placement,
		})
	}
}

// Insert writes every row of the fixture in dependency order.
func (f *Fixture) Insert(ctx context.Context, db bun.IDB) error {
	inserts := []struct {
		name  string
		model any
		n     int
	}{
		{"metas", &f.Metas, len(f.Metas)},
		{"tournaments", &f.Tournaments, len(f.Tournaments)},
		{"tournament_groups", &f.Groups, len(f.Groups)},
		{"tournament_group_tournaments", &f.GroupMembers, len(f.GroupMembers)},
		{"decks", &f.Decks, len(f.Decks)},
		{"tournament_decks", &f.TournamentDecks, len(f.TournamentDecks)},
		{"deck_cards", &f.DeckCards, len(f.DeckCards)},
	}
	for _, ins := range inserts {
		if ins.n == 0 {
			continue
		}
		if _, err := db.NewInsert().Model(ins.model).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert %s: %w", ins.name, err)
		}
	}
	return nil
}

func IntPtr(v int) *int { return &v }
