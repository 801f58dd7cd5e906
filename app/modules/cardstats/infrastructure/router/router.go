package cardstatsrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	cardstatsservice "github.com/swubase/cardstats/app/modules/cardstats/application"
	cardstatsevents "github.com/swubase/cardstats/app/modules/cardstats/events"
	cardstatshandlers "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/handlers"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// CardStatsRouter wires recompute trigger topics to their handlers and
// publishes whatever the handlers return.
type CardStatsRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

func NewCardStatsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *CardStatsRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}
	return &CardStatsRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure adds middleware and registers the trigger handlers.
func (r *CardStatsRouter) Configure(routerCtx context.Context, service cardstatsservice.Service) error {
	if r.metricsEnabled {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware - either in test environment or metrics not configured")
	}

	handlers := cardstatshandlers.NewCardStatsHandlers(service, r.logger, r.tracer)

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	if err := r.RegisterHandlers(routerCtx, handlers); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

// RegisterHandlers subscribes each trigger topic.
func (r *CardStatsRouter) RegisterHandlers(ctx context.Context, handlers cardstatshandlers.Handlers) error {
	eventsToHandlers := map[string]message.HandlerFunc{
		cardstatsevents.TournamentImportedV1:     handlers.HandleTournamentImported,
		cardstatsevents.GroupMembershipChangedV1: handlers.HandleGroupMembershipChanged,
		cardstatsevents.RecomputeRequestedV1:     handlers.HandleRecomputeRequested,
	}

	for topic, handlerFunc := range eventsToHandlers {
		handlerName := fmt.Sprintf("cardstats.%s", topic)
		r.Router.AddHandler(
			handlerName,
			topic,
			r.subscriber,
			"",
			nil,
			func(msg *message.Message) ([]*message.Message, error) {
				messages, err := handlerFunc(msg)
				if err != nil {
					r.logger.ErrorContext(ctx, "Error processing message",
						slog.String("message_id", msg.UUID),
						slog.Any("error", err),
					)
					return nil, err
				}
				for _, m := range messages {
					publishTopic := m.Metadata.Get(cardstatshandlers.TopicMetadataKey)
					if publishTopic == "" {
						r.logger.Error("router failed to resolve publish topic - MESSAGE DROPPED",
							slog.String("handler", handlerName),
							slog.String("msg_uuid", m.UUID),
							slog.String("correlation_id", middleware.MessageCorrelationID(m)),
						)
						continue
					}

					r.logger.InfoContext(ctx, "publishing message",
						slog.String("topic", publishTopic),
						slog.String("handler", handlerName),
						slog.String("correlation_id", middleware.MessageCorrelationID(m)),
					)
					if err := r.publisher.Publish(publishTopic, m); err != nil {
						return nil, fmt.Errorf("failed to publish to %s: %w", publishTopic, err)
					}
				}
				return nil, nil
			},
		)
	}
	return nil
}

func (r *CardStatsRouter) Close() error {
	return r.Router.Close()
}
