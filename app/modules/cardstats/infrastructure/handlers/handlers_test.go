package cardstatshandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	cardstatsservice "github.com/swubase/cardstats/app/modules/cardstats/application"
	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
	cardstatsevents "github.com/swubase/cardstats/app/modules/cardstats/events"
)

func newTestHandlers(svc *FakeService) Handlers {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCardStatsHandlers(svc, logger, noop.NewTracerProvider().Tracer("test"))
}

func newMessage(t *testing.T, payload any) *message.Message {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	msg := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID("corr-1", msg)
	return msg
}

func decodeCompleted(t *testing.T, msg *message.Message) cardstatsevents.RecomputeCompletedPayloadV1 {
	t.Helper()
	var payload cardstatsevents.RecomputeCompletedPayloadV1
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	return payload
}

func TestHandleTournamentImported(t *testing.T) {
	eventID, metaID := uuid.New(), uuid.New()

	tests := []struct {
		name       string
		payload    any
		setup      func(*FakeService)
		wantOut    int
		wantErr    bool
		wantCalls  []string
		wantScopes int
	}{
		{
			name:    "propagates and reports every scope",
			payload: cardstatsevents.TournamentImportedPayloadV1{TournamentID: eventID},
			setup: func(f *FakeService) {
				f.PropagateFromEventFunc = func(ctx context.Context, id uuid.UUID) (*cardstatsservice.PropagationResult, error) {
					assert.Equal(t, eventID, id)
					return &cardstatsservice.PropagationResult{
						Event: &cardstatsservice.ScopeResult{Scope: cardstatsdomain.EventScope(id), MemberEvents: 1},
						Metas: []*cardstatsservice.ScopeResult{{Scope: cardstatsdomain.MetaScope(metaID), MemberEvents: 3}},
					}, nil
				}
			},
			wantOut:    1,
			wantCalls:  []string{"PropagateFromEvent"},
			wantScopes: 2,
		},
		{
			name:    "service failure nacks",
			payload: cardstatsevents.TournamentImportedPayloadV1{TournamentID: eventID},
			setup: func(f *FakeService) {
				f.PropagateFromEventFunc = func(ctx context.Context, id uuid.UUID) (*cardstatsservice.PropagationResult, error) {
					return nil, errors.New("db down")
				}
			},
			wantErr:   true,
			wantCalls: []string{"PropagateFromEvent"},
		},
		{
			name:      "invalid payload is dropped",
			payload:   "not an object",
			wantCalls: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &FakeService{}
			if tt.setup != nil {
				tt.setup(svc)
			}
			h := newTestHandlers(svc)

			out, err := h.HandleTournamentImported(newMessage(t, tt.payload))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, out, tt.wantOut)
			assert.Equal(t, tt.wantCalls, svc.Calls())

			if tt.wantOut > 0 {
				assert.Equal(t, cardstatsevents.RecomputeCompletedV1, out[0].Metadata.Get(TopicMetadataKey))
				assert.Equal(t, "corr-1", middleware.MessageCorrelationID(out[0]))
				completed := decodeCompleted(t, out[0])
				assert.Equal(t, "HandleTournamentImported", completed.Trigger)
				assert.Len(t, completed.Scopes, tt.wantScopes)
			}
		})
	}
}

func TestHandleGroupMembershipChanged(t *testing.T) {
	groupID := uuid.New()
	svc := &FakeService{}
	svc.PropagateFromGroupMembershipChangeFunc = func(ctx context.Context, id uuid.UUID) (*cardstatsservice.ScopeResult, error) {
		return &cardstatsservice.ScopeResult{
			Scope:      cardstatsdomain.GroupScope(id),
			Placements: cardstatsdomain.PlacementStats{{LeaderCardID: "L1", BaseCardID: "B1"}: {TotalCount: 1}},
		}, nil
	}
	h := newTestHandlers(svc)

	out, err := h.HandleGroupMembershipChanged(newMessage(t, cardstatsevents.GroupMembershipChangedPayloadV1{GroupID: groupID}))
	require.NoError(t, err)
	require.Len(t, out, 1)

	completed := decodeCompleted(t, out[0])
	require.Len(t, completed.Scopes, 1)
	assert.Equal(t, "group", completed.Scopes[0].ScopeKind)
	assert.Equal(t, groupID, completed.Scopes[0].ScopeID)
	assert.Equal(t, 1, completed.Scopes[0].PlacementRows)
}

func TestHandleRecomputeRequested(t *testing.T) {
	metaID := uuid.New()
	svc := &FakeService{}
	var gotScope cardstatsdomain.Scope
	var gotPropagate bool
	svc.RecomputeFunc = func(ctx context.Context, scope cardstatsdomain.Scope, propagate bool) (*cardstatsservice.PropagationResult, error) {
		gotScope, gotPropagate = scope, propagate
		return &cardstatsservice.PropagationResult{Metas: []*cardstatsservice.ScopeResult{{Scope: scope}}}, nil
	}
	h := newTestHandlers(svc)

	out, err := h.HandleRecomputeRequested(newMessage(t, cardstatsevents.RecomputeRequestedPayloadV1{ScopeKind: "meta", ScopeID: metaID}))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, cardstatsdomain.MetaScope(metaID), gotScope)
	assert.False(t, gotPropagate)
}

func TestHandleRecomputeRequested_UnknownKindIsDropped(t *testing.T) {
	svc := &FakeService{}
	svc.RecomputeFunc = func(ctx context.Context, scope cardstatsdomain.Scope, propagate bool) (*cardstatsservice.PropagationResult, error) {
		return nil, fmt.Errorf("%w: %q", cardstatsservice.ErrUnknownScopeKind, scope.Kind)
	}
	h := newTestHandlers(svc)

	out, err := h.HandleRecomputeRequested(newMessage(t, cardstatsevents.RecomputeRequestedPayloadV1{ScopeKind: "season", ScopeID: uuid.New()}))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, []string{"Recompute"}, svc.Calls())
}
