package cardstatshandlers

import (
	"context"
	"io"

	"github.com/google/uuid"

	cardstatsservice "github.com/swubase/cardstats/app/modules/cardstats/application"
	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

// FakeService records calls and answers from ...Func fields.
type FakeService struct {
	calls []string

	PropagateFromEventFunc                 func(ctx context.Context, eventID uuid.UUID) (*cardstatsservice.PropagationResult, error)
	PropagateFromGroupMembershipChangeFunc func(ctx context.Context, groupID uuid.UUID) (*cardstatsservice.ScopeResult, error)
	RecomputeFunc                          func(ctx context.Context, scope cardstatsdomain.Scope, propagate bool) (*cardstatsservice.PropagationResult, error)
}

func (f *FakeService) record(call string) { f.calls = append(f.calls, call) }

func (f *FakeService) Calls() []string { return append([]string(nil), f.calls...) }

func (f *FakeService) RecomputeEvent(ctx context.Context, eventID uuid.UUID) (*cardstatsservice.ScopeResult, error) {
	f.record("RecomputeEvent")
	return &cardstatsservice.ScopeResult{Scope: cardstatsdomain.EventScope(eventID)}, nil
}

func (f *FakeService) RecomputeMeta(ctx context.Context, metaID uuid.UUID) (*cardstatsservice.ScopeResult, error) {
	f.record("RecomputeMeta")
	return &cardstatsservice.ScopeResult{Scope: cardstatsdomain.MetaScope(metaID)}, nil
}

func (f *FakeService) RecomputeGroup(ctx context.Context, groupID uuid.UUID) (*cardstatsservice.ScopeResult, error) {
	f.record("RecomputeGroup")
	return &cardstatsservice.ScopeResult{Scope: cardstatsdomain.GroupScope(groupID)}, nil
}

func (f *FakeService) PropagateFromEvent(ctx context.Context, eventID uuid.UUID) (*cardstatsservice.PropagationResult, error) {
	f.record("PropagateFromEvent")
	if f.PropagateFromEventFunc != nil {
		return f.PropagateFromEventFunc(ctx, eventID)
	}
	return &cardstatsservice.PropagationResult{Event: &cardstatsservice.ScopeResult{Scope: cardstatsdomain.EventScope(eventID)}}, nil
}

func (f *FakeService) PropagateFromGroupMembershipChange(ctx context.Context, groupID uuid.UUID) (*cardstatsservice.ScopeResult, error) {
	f.record("PropagateFromGroupMembershipChange")
	if f.PropagateFromGroupMembershipChangeFunc != nil {
		return f.PropagateFromGroupMembershipChangeFunc(ctx, groupID)
	}
	return &cardstatsservice.ScopeResult{Scope: cardstatsdomain.GroupScope(groupID)}, nil
}

func (f *FakeService) Recompute(ctx context.Context, scope cardstatsdomain.Scope, propagate bool) (*cardstatsservice.PropagationResult, error) {
	f.record("Recompute")
	if f.RecomputeFunc != nil {
		return f.RecomputeFunc(ctx, scope, propagate)
	}
	return &cardstatsservice.PropagationResult{}, nil
}

func (f *FakeService) GetCardStats(ctx context.Context, scope cardstatsdomain.Scope, g cardstatsdomain.Granularity) ([]cardstatsdomain.KeyedStat, error) {
	f.record("GetCardStats")
	return nil, nil
}

func (f *FakeService) GetPlacementStats(ctx context.Context, groupID uuid.UUID) (cardstatsdomain.PlacementStats, error) {
	f.record("GetPlacementStats")
	return nil, nil
}

func (f *FakeService) GetGroupSummary(ctx context.Context, groupID uuid.UUID) (*cardstatsdomain.GroupSummary, error) {
	f.record("GetGroupSummary")
	return &cardstatsdomain.GroupSummary{}, nil
}

func (f *FakeService) ExportWorkbook(ctx context.Context, scope cardstatsdomain.Scope, w io.Writer) error {
	f.record("ExportWorkbook")
	return nil
}

func (f *FakeService) RenderPlayRateChart(ctx context.Context, scope cardstatsdomain.Scope, topN int) ([]byte, error) {
	f.record("RenderPlayRateChart")
	return nil, nil
}

var _ cardstatsservice.Service = (*FakeService)(nil)
