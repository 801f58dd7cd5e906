package cardstatsservice

import (
	"context"
	"io"

	"github.com/google/uuid"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

// Service recomputes and serves card statistics for events, metas and groups.
type Service interface {
	// RecomputeEvent rebuilds an event's three card rollups from raw decklists.
	RecomputeEvent(ctx context.Context, eventID uuid.UUID) (*ScopeResult, error)

	// RecomputeMeta sums the persisted event rollups of the meta's events.
	// Member events are assumed current.
	RecomputeMeta(ctx context.Context, metaID uuid.UUID) (*ScopeResult, error)

	// RecomputeGroup sums persisted event rollups and rebuilds placement and
	// summary counters from raw placements.
	RecomputeGroup(ctx context.Context, groupID uuid.UUID) (*ScopeResult, error)

	// PropagateFromEvent recomputes the event, then every meta and group containing it.
	PropagateFromEvent(ctx context.Context, eventID uuid.UUID) (*PropagationResult, error)

	// PropagateFromGroupMembershipChange recomputes one group after events were added, removed or reordered.
	PropagateFromGroupMembershipChange(ctx context.Context, groupID uuid.UUID) (*ScopeResult, error)

	// Recompute dispatches on the scope kind. With propagate set, an event scope cascades.
	Recompute(ctx context.Context, scope cardstatsdomain.Scope, propagate bool) (*PropagationResult, error)

	GetCardStats(ctx context.Context, scope cardstatsdomain.Scope, g cardstatsdomain.Granularity) ([]cardstatsdomain.KeyedStat, error)
	GetPlacementStats(ctx context.Context, groupID uuid.UUID) (cardstatsdomain.PlacementStats, error)
	GetGroupSummary(ctx context.Context, groupID uuid.UUID) (*cardstatsdomain.GroupSummary, error)

	// ExportWorkbook writes a scope's persisted statistics as an xlsx workbook.
	ExportWorkbook(ctx context.Context, scope cardstatsdomain.Scope, w io.Writer) error

	// RenderPlayRateChart draws the topN cards of a scope by deck count as a PNG.
	RenderPlayRateChart(ctx context.Context, scope cardstatsdomain.Scope, topN int) ([]byte, error)
}

// ScopeResult is what one scope recompute persisted.
type ScopeResult struct {
	Scope        cardstatsdomain.Scope
	MemberEvents int
	CardStats    cardstatsdomain.CardStatSet

	// Set for group scopes only.
	Placements cardstatsdomain.PlacementStats
	Summary    *cardstatsdomain.GroupSummary
}

// PropagationResult lists every scope a request recomputed, in the order they committed.
type PropagationResult struct {
	Event  *ScopeResult
	Metas  []*ScopeResult
	Groups []*ScopeResult
}

// Scopes flattens the result in commit order.
func (p *PropagationResult) Scopes() []*ScopeResult {
	if p == nil {
		return nil
	}
	var out []*ScopeResult
	if p.Event != nil {
		out = append(out, p.Event)
	}
	out = append(out, p.Metas...)
	return append(out, p.Groups...)
}
