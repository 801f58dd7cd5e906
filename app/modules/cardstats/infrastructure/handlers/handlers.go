package cardstatshandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cardstatsservice "github.com/swubase/cardstats/app/modules/cardstats/application"
	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
	cardstatsevents "github.com/swubase/cardstats/app/modules/cardstats/events"
)

// TopicMetadataKey names the metadata entry the router reads the publish topic from.
const TopicMetadataKey = "topic"

// CardStatsHandlers handles recompute triggers.
type CardStatsHandlers struct {
	service cardstatsservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewCardStatsHandlers(service cardstatsservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &CardStatsHandlers{service: service, logger: logger, tracer: tracer}
}

// handlerWrapper decodes the payload into T, traces and logs the call, and
// turns a successful result into a completion message. Undecodable payloads
// and unknown scope kinds are logged and acked; other service errors are
// returned so the message is nacked.
func handlerWrapper[T any](
	h *CardStatsHandlers,
	handlerName string,
	handle func(ctx context.Context, payload *T) (*cardstatsservice.PropagationResult, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx, span := h.tracer.Start(msg.Context(), handlerName, trace.WithAttributes(
			attribute.String("message_id", msg.UUID),
			attribute.String("correlation_id", middleware.MessageCorrelationID(msg)),
		))
		defer span.End()

		attrs := []any{
			slog.String("handler", handlerName),
			slog.String("message_id", msg.UUID),
			slog.String("correlation_id", middleware.MessageCorrelationID(msg)),
		}
		h.logger.InfoContext(ctx, handlerName+" triggered", attrs...)

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			h.logger.WarnContext(ctx, "Dropping message with invalid payload", append(attrs, slog.Any("error", err))...)
			span.RecordError(err)
			return nil, nil
		}

		result, err := handle(ctx, payload)
		if errors.Is(err, cardstatsservice.ErrUnknownScopeKind) {
			h.logger.WarnContext(ctx, "Dropping message with unknown scope kind", append(attrs, slog.Any("error", err))...)
			span.RecordError(err)
			return nil, nil
		}
		if err != nil {
			h.logger.ErrorContext(ctx, "Recompute failed", append(attrs, slog.Any("error", err))...)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		out, err := newCompletedMessage(msg, handlerName, result)
		if err != nil {
			return nil, err
		}
		h.logger.InfoContext(ctx, handlerName+" completed", append(attrs, slog.Int("scopes", len(result.Scopes())))...)
		return []*message.Message{out}, nil
	}
}

func (h *CardStatsHandlers) HandleTournamentImported(msg *message.Message) ([]*message.Message, error) {
	return handlerWrapper(h, "HandleTournamentImported", func(ctx context.Context, p *cardstatsevents.TournamentImportedPayloadV1) (*cardstatsservice.PropagationResult, error) {
		return h.service.PropagateFromEvent(ctx, p.TournamentID)
	})(msg)
}

func (h *CardStatsHandlers) HandleGroupMembershipChanged(msg *message.Message) ([]*message.Message, error) {
	return handlerWrapper(h, "HandleGroupMembershipChanged", func(ctx context.Context, p *cardstatsevents.GroupMembershipChangedPayloadV1) (*cardstatsservice.PropagationResult, error) {
		res, err := h.service.PropagateFromGroupMembershipChange(ctx, p.GroupID)
		if err != nil {
			return nil, err
		}
		return &cardstatsservice.PropagationResult{Groups: []*cardstatsservice.ScopeResult{res}}, nil
	})(msg)
}

func (h *CardStatsHandlers) HandleRecomputeRequested(msg *message.Message) ([]*message.Message, error) {
	return handlerWrapper(h, "HandleRecomputeRequested", func(ctx context.Context, p *cardstatsevents.RecomputeRequestedPayloadV1) (*cardstatsservice.PropagationResult, error) {
		scope := cardstatsdomain.Scope{Kind: cardstatsdomain.ScopeKind(p.ScopeKind), ID: p.ScopeID}
		return h.service.Recompute(ctx, scope, p.Propagate)
	})(msg)
}

func newCompletedMessage(in *message.Message, trigger string, result *cardstatsservice.PropagationResult) (*message.Message, error) {
	payload := cardstatsevents.RecomputeCompletedPayloadV1{Trigger: trigger}
	for _, s := range result.Scopes() {
		payload.Scopes = append(payload.Scopes, cardstatsevents.RecomputedScopeV1{
			ScopeKind:      string(s.Scope.Kind),
			ScopeID:        s.Scope.ID,
			MemberEvents:   s.MemberEvents,
			CardRows:       len(s.CardStats.Card),
			LeaderRows:     len(s.CardStats.Leader),
			LeaderBaseRows: len(s.CardStats.LeaderBase),
			PlacementRows:  len(s.Placements),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion payload: %w", err)
	}
	out := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID(middleware.MessageCorrelationID(in), out)
	out.Metadata.Set(TopicMetadataKey, cardstatsevents.RecomputeCompletedV1)
	return out, nil
}
