package cardstatsservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
	cardstatsdb "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/repositories"
)

func (s *CardStatsService) RecomputeEvent(ctx context.Context, eventID uuid.UUID) (*ScopeResult, error) {
	return withTelemetry(s, ctx, "RecomputeEvent", cardstatsdomain.EventScope(eventID), func(ctx context.Context) (*ScopeResult, error) {
		return s.recomputeEvent(ctx, eventID)
	})
}

func (s *CardStatsService) RecomputeMeta(ctx context.Context, metaID uuid.UUID) (*ScopeResult, error) {
	return withTelemetry(s, ctx, "RecomputeMeta", cardstatsdomain.MetaScope(metaID), func(ctx context.Context) (*ScopeResult, error) {
		return s.recomputeMeta(ctx, metaID)
	})
}

func (s *CardStatsService) RecomputeGroup(ctx context.Context, groupID uuid.UUID) (*ScopeResult, error) {
	return withTelemetry(s, ctx, "RecomputeGroup", cardstatsdomain.GroupScope(groupID), func(ctx context.Context) (*ScopeResult, error) {
		return s.recomputeGroup(ctx, groupID)
	})
}

func (s *CardStatsService) PropagateFromGroupMembershipChange(ctx context.Context, groupID uuid.UUID) (*ScopeResult, error) {
	return withTelemetry(s, ctx, "PropagateFromGroupMembershipChange", cardstatsdomain.GroupScope(groupID), func(ctx context.Context) (*ScopeResult, error) {
		return s.recomputeGroup(ctx, groupID)
	})
}

// PropagateFromEvent stops at the first failing scope. The partial result
// lists the scopes that committed before it.
func (s *CardStatsService) PropagateFromEvent(ctx context.Context, eventID uuid.UUID) (*PropagationResult, error) {
	return withTelemetry(s, ctx, "PropagateFromEvent", cardstatsdomain.EventScope(eventID), func(ctx context.Context) (*PropagationResult, error) {
		return s.propagateFromEvent(ctx, eventID)
	})
}

func (s *CardStatsService) Recompute(ctx context.Context, scope cardstatsdomain.Scope, propagate bool) (*PropagationResult, error) {
	switch scope.Kind {
	case cardstatsdomain.ScopeEvent:
		if propagate {
			return s.PropagateFromEvent(ctx, scope.ID)
		}
		res, err := s.RecomputeEvent(ctx, scope.ID)
		if err != nil {
			return nil, err
		}
		return &PropagationResult{Event: res}, nil
	case cardstatsdomain.ScopeMeta:
		res, err := s.RecomputeMeta(ctx, scope.ID)
		if err != nil {
			return nil, err
		}
		return &PropagationResult{Metas: []*ScopeResult{res}}, nil
	case cardstatsdomain.ScopeGroup:
		res, err := s.RecomputeGroup(ctx, scope.ID)
		if err != nil {
			return nil, err
		}
		return &PropagationResult{Groups: []*ScopeResult{res}}, nil
	}
	return withTelemetry(s, ctx, "Recompute", scope, func(ctx context.Context) (*PropagationResult, error) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScopeKind, scope.Kind)
	})
}

func (s *CardStatsService) propagateFromEvent(ctx context.Context, eventID uuid.UUID) (*PropagationResult, error) {
	eventScope := cardstatsdomain.EventScope(eventID)
	result := &PropagationResult{}

	eventRes, err := s.recomputeEvent(ctx, eventID)
	if err != nil {
		return result, err
	}
	result.Event = eventRes

	db := s.idb()
	metaIDs, err := s.repo.GetMetasForEvent(ctx, db, eventID)
	if err != nil {
		return result, recomputeErr(eventScope, StagePropagate, err)
	}
	groupIDs, err := s.repo.GetGroupsForEvent(ctx, db, eventID)
	if err != nil {
		return result, recomputeErr(eventScope, StagePropagate, err)
	}

	s.logger.DebugContext(ctx, "Propagating event recompute",
		slog.String("event_id", eventID.String()),
		slog.Int("metas", len(metaIDs)),
		slog.Int("groups", len(groupIDs)),
	)

	for _, metaID := range metaIDs {
		res, err := s.recomputeMeta(ctx, metaID)
		if err != nil {
			return result, err
		}
		result.Metas = append(result.Metas, res)
	}
	for _, groupID := range groupIDs {
		res, err := s.recomputeGroup(ctx, groupID)
		if err != nil {
			return result, err
		}
		result.Groups = append(result.Groups, res)
	}
	return result, nil
}

func (s *CardStatsService) recomputeEvent(ctx context.Context, eventID uuid.UUID) (*ScopeResult, error) {
	scope := cardstatsdomain.EventScope(eventID)
	unlock := s.locks.lock(scope)
	defer unlock()

	db := s.idb()
	eventIDs := []uuid.UUID{eventID}

	rows, err := s.repo.GetDeckCardRows(ctx, db, eventIDs)
	if err != nil {
		return nil, recomputeErr(scope, StageLoad, err)
	}
	decks, err := s.repo.GetDeckContexts(ctx, db, eventIDs)
	if err != nil {
		return nil, recomputeErr(scope, StageLoad, err)
	}

	byDeck := make(map[uuid.UUID]cardstatsdomain.DeckContext, len(decks))
	for _, d := range decks {
		byDeck[d.DeckID] = d
	}

	stats := s.events.Aggregate(rows, byDeck)
	if err := s.persistCardStats(ctx, scope, stats); err != nil {
		return nil, err
	}

	s.metrics.RecordScopeRecompute(ctx, string(scope.Kind), 1)
	return &ScopeResult{Scope: scope, MemberEvents: 1, CardStats: stats}, nil
}

func (s *CardStatsService) recomputeMeta(ctx context.Context, metaID uuid.UUID) (*ScopeResult, error) {
	scope := cardstatsdomain.MetaScope(metaID)
	unlock := s.locks.lock(scope)
	defer unlock()

	eventIDs, err := s.repo.GetMetaEventIDs(ctx, s.idb(), metaID)
	if err != nil {
		return nil, recomputeErr(scope, StageResolve, err)
	}

	stats, err := s.combineCardStats(ctx, scope, eventIDs)
	if err != nil {
		return nil, err
	}
	if err := s.persistCardStats(ctx, scope, stats); err != nil {
		return nil, err
	}

	s.metrics.RecordScopeRecompute(ctx, string(scope.Kind), len(eventIDs))
	return &ScopeResult{Scope: scope, MemberEvents: len(eventIDs), CardStats: stats}, nil
}

func (s *CardStatsService) recomputeGroup(ctx context.Context, groupID uuid.UUID) (*ScopeResult, error) {
	scope := cardstatsdomain.GroupScope(groupID)
	unlock := s.locks.lock(scope)
	defer unlock()

	db := s.idb()
	eventIDs, err := s.repo.GetGroupEventIDs(ctx, db, groupID)
	if err != nil {
		return nil, recomputeErr(scope, StageResolve, err)
	}

	stats, err := s.combineCardStats(ctx, scope, eventIDs)
	if err != nil {
		return nil, err
	}
	if err := s.persistCardStats(ctx, scope, stats); err != nil {
		return nil, err
	}

	decks, err := s.repo.GetDeckContexts(ctx, db, eventIDs)
	if err != nil {
		return nil, recomputeErr(scope, StageLoad, err)
	}
	events, err := s.repo.GetEventInfos(ctx, db, eventIDs)
	if err != nil {
		return nil, recomputeErr(scope, StageLoad, err)
	}

	placements := s.placements.Aggregate(decks)
	summary := s.placements.Summarize(events, decks)

	n, err := s.repo.ReplacePlacementStats(ctx, db, groupID, placements)
	if err != nil {
		return nil, recomputeErr(scope, StagePersistPlacement, err)
	}
	s.metrics.RecordRowsPersisted(ctx, "tournament_group_leader_base_stats", n)

	if err := s.repo.ReplaceGroupSummary(ctx, db, groupID, summary); err != nil {
		return nil, recomputeErr(scope, StagePersistSummary, err)
	}
	s.metrics.RecordRowsPersisted(ctx, "tournament_group_stats", 1)

	s.metrics.RecordScopeRecompute(ctx, string(scope.Kind), len(eventIDs))
	return &ScopeResult{
		Scope:        scope,
		MemberEvents: len(eventIDs),
		CardStats:    stats,
		Placements:   placements,
		Summary:      &summary,
	}, nil
}

// combineCardStats sums the persisted event rollups of eventIDs per granularity.
func (s *CardStatsService) combineCardStats(ctx context.Context, scope cardstatsdomain.Scope, eventIDs []uuid.UUID) (cardstatsdomain.CardStatSet, error) {
	set := cardstatsdomain.NewCardStatSet()
	for _, g := range cardstatsdomain.Granularities {
		parts, err := s.repo.GetEventCardStats(ctx, s.idb(), g, eventIDs)
		if err != nil {
			return cardstatsdomain.CardStatSet{}, recomputeErr(scope, StageLoad, err)
		}
		set.Set(g, cardstatsdomain.CombineStatMaps(parts...))
	}
	return set, nil
}

// persistCardStats replaces each granularity in its own transaction. A failure
// leaves earlier granularities committed.
func (s *CardStatsService) persistCardStats(ctx context.Context, scope cardstatsdomain.Scope, set cardstatsdomain.CardStatSet) error {
	for _, g := range cardstatsdomain.Granularities {
		n, err := s.repo.ReplaceCardStats(ctx, s.idb(), g, scope, set.Get(g))
		if err != nil {
			return recomputeErr(scope, persistStage(g), err)
		}
		s.metrics.RecordRowsPersisted(ctx, cardstatsdb.TableFor(g), n)
		s.logger.DebugContext(ctx, "Persisted card stats",
			slog.String("scope", scope.String()),
			slog.String("granularity", string(g)),
			slog.Int("rows", n),
		)
	}
	return nil
}
