package cardstatsservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
	cardstatsdb "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/repositories"
)

// GetCardStats returns a scope's persisted rollup ordered by deck count.
func (s *CardStatsService) GetCardStats(ctx context.Context, scope cardstatsdomain.Scope, g cardstatsdomain.Granularity) ([]cardstatsdomain.KeyedStat, error) {
	return withTelemetry(s, ctx, "GetCardStats", scope, func(ctx context.Context) ([]cardstatsdomain.KeyedStat, error) {
		if !g.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
		}
		if !scope.Kind.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScopeKind, scope.Kind)
		}
		stats, err := s.repo.GetCardStats(ctx, s.idb(), g, scope)
		if err != nil {
			return nil, err
		}
		return stats.Ranked(), nil
	})
}

func (s *CardStatsService) GetPlacementStats(ctx context.Context, groupID uuid.UUID) (cardstatsdomain.PlacementStats, error) {
	return withTelemetry(s, ctx, "GetPlacementStats", cardstatsdomain.GroupScope(groupID), func(ctx context.Context) (cardstatsdomain.PlacementStats, error) {
		return s.repo.GetPlacementStats(ctx, s.idb(), groupID)
	})
}

// GetGroupSummary returns a zero summary for groups never recomputed.
func (s *CardStatsService) GetGroupSummary(ctx context.Context, groupID uuid.UUID) (*cardstatsdomain.GroupSummary, error) {
	return withTelemetry(s, ctx, "GetGroupSummary", cardstatsdomain.GroupScope(groupID), func(ctx context.Context) (*cardstatsdomain.GroupSummary, error) {
		summary, err := s.repo.GetGroupSummary(ctx, s.idb(), groupID)
		if errors.Is(err, cardstatsdb.ErrNotFound) {
			return &cardstatsdomain.GroupSummary{}, nil
		}
		return summary, err
	})
}

// memberEventIDs resolves a scope to its events. Unknown scopes resolve to none.
func (s *CardStatsService) memberEventIDs(ctx context.Context, scope cardstatsdomain.Scope) ([]uuid.UUID, error) {
	switch scope.Kind {
	case cardstatsdomain.ScopeEvent:
		return []uuid.UUID{scope.ID}, nil
	case cardstatsdomain.ScopeMeta:
		return s.repo.GetMetaEventIDs(ctx, s.idb(), scope.ID)
	case cardstatsdomain.ScopeGroup:
		return s.repo.GetGroupEventIDs(ctx, s.idb(), scope.ID)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScopeKind, scope.Kind)
}

// totalDecks counts every deck registered in the scope's events, valid or not.
func (s *CardStatsService) totalDecks(ctx context.Context, scope cardstatsdomain.Scope) (int, error) {
	eventIDs, err := s.memberEventIDs(ctx, scope)
	if err != nil {
		return 0, err
	}
	decks, err := s.repo.GetDeckContexts(ctx, s.idb(), eventIDs)
	if err != nil {
		return 0, err
	}
	return len(decks), nil
}
