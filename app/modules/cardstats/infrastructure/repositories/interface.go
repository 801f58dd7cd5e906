package cardstatsdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

// Repository defines the contract for card statistics persistence.
// Every method takes an optional bun.IDB; nil falls back to the repository's
// own connection.
type Repository interface {
	// --- Scope resolution ---

	// GetMetaEventIDs lists the tournaments belonging to a meta. An unknown meta yields none.
	GetMetaEventIDs(ctx context.Context, db bun.IDB, metaID uuid.UUID) ([]uuid.UUID, error)

	// GetGroupEventIDs lists a group's tournaments in position order.
	GetGroupEventIDs(ctx context.Context, db bun.IDB, groupID uuid.UUID) ([]uuid.UUID, error)

	// GetMetasForEvent lists the metas containing a tournament.
	GetMetasForEvent(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]uuid.UUID, error)

	// GetGroupsForEvent lists the groups containing a tournament.
	GetGroupsForEvent(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]uuid.UUID, error)

	// --- Raw source data ---

	GetDeckCardRows(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) ([]cardstatsdomain.DeckCardRow, error)
	GetDeckContexts(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) ([]cardstatsdomain.DeckContext, error)
	GetEventInfos(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) ([]cardstatsdomain.EventInfo, error)

	// --- Derived data ---

	// GetCardStats returns one scope's persisted rollup for a granularity.
	GetCardStats(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, scope cardstatsdomain.Scope) (cardstatsdomain.StatMap, error)

	// GetEventCardStats returns the persisted event-level rollups of each event, one map per event that has rows.
	GetEventCardStats(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, eventIDs []uuid.UUID) ([]cardstatsdomain.StatMap, error)

	GetPlacementStats(ctx context.Context, db bun.IDB, groupID uuid.UUID) (cardstatsdomain.PlacementStats, error)

	// GetGroupSummary returns ErrNotFound when the group was never recomputed.
	GetGroupSummary(ctx context.Context, db bun.IDB, groupID uuid.UUID) (*cardstatsdomain.GroupSummary, error)

	// --- Replace-and-persist ---

	// ReplaceCardStats deletes and reinserts one (scope, granularity) in a single
	// transaction and returns the number of rows written.
	ReplaceCardStats(ctx context.Context, db bun.IDB, g cardstatsdomain.Granularity, scope cardstatsdomain.Scope, stats cardstatsdomain.StatMap) (int, error)

	ReplacePlacementStats(ctx context.Context, db bun.IDB, groupID uuid.UUID, stats cardstatsdomain.PlacementStats) (int, error)

	ReplaceGroupSummary(ctx context.Context, db bun.IDB, groupID uuid.UUID, summary cardstatsdomain.GroupSummary) error
}
