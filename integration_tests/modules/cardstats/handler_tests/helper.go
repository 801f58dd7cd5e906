package cardstatshandlerintegrationtests

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/swubase/cardstats/app/eventbus"
	"github.com/swubase/cardstats/app/modules/cardstats"
	cardstatsevents "github.com/swubase/cardstats/app/modules/cardstats/events"
	"github.com/swubase/cardstats/integration_tests/testutils"
	"github.com/swubase/cardstats/pkg/observability"
)

type HandlerDeps struct {
	Env       *testutils.TestEnvironment
	Bus       *eventbus.EventBus
	Module    *cardstats.Module
	Completed <-chan *message.Message
}

// SetupHandlerTest runs the cardstats router against the NATS container and
// subscribes to completion messages.
func SetupHandlerTest(t *testing.T) HandlerDeps {
	t.Helper()

	env := testutils.GetOrCreateTestEnv(t)
	env.Reset(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus, err := eventbus.NewEventBus(env.Ctx, env.Config.NATS.URL, logger)
	if err != nil {
		t.Fatalf("Failed to create event bus: %v", err)
	}
	if err := bus.EnsureStream(env.Ctx, cardstatsevents.StreamName, cardstatsevents.StreamSubject); err != nil {
		t.Fatalf("Failed to ensure stream: %v", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		t.Fatalf("Failed to create router: %v", err)
	}

	obs := &observability.Observability{
		Logger:   logger,
		Tracer:   noop.NewTracerProvider().Tracer("test_cardstats_handlers"),
		Registry: prometheus.NewRegistry(),
	}
	module, err := cardstats.NewCardStatsModule(env.Ctx, env.Config, obs, env.DB, &cardstats.Transport{
		Router:     router,
		Subscriber: bus,
		Publisher:  bus,
	})
	if err != nil {
		t.Fatalf("Failed to create module: %v", err)
	}

	ctx, cancel := context.WithCancel(env.Ctx)
	completed, err := bus.Subscribe(ctx, cardstatsevents.RecomputeCompletedV1)
	if err != nil {
		cancel()
		t.Fatalf("Failed to subscribe to completions: %v", err)
	}

	go func() {
		if err := router.Run(ctx); err != nil {
			t.Logf("router stopped: %v", err)
		}
	}()
	select {
	case <-router.Running():
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatal("router did not start")
	}

	t.Cleanup(func() {
		cancel()
		router.Close()
		bus.Close()
	})

	return HandlerDeps{Env: env, Bus: bus, Module: module, Completed: completed}
}

func publish(t *testing.T, deps HandlerDeps, topic string, payload any) *message.Message {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set("correlation_id", watermill.NewUUID())
	if err := deps.Bus.Publish(topic, msg); err != nil {
		t.Fatalf("Failed to publish to %s: %v", topic, err)
	}
	return msg
}

// waitForCompletion returns the first completion message carrying the trigger's correlation id.
func waitForCompletion(t *testing.T, deps HandlerDeps, trigger *message.Message, timeout time.Duration) cardstatsevents.RecomputeCompletedPayloadV1 {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-deps.Completed:
			msg.Ack()
			if msg.Metadata.Get("correlation_id") != trigger.Metadata.Get("correlation_id") {
				continue
			}
			var payload cardstatsevents.RecomputeCompletedPayloadV1
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				t.Fatalf("Failed to decode completion: %v", err)
			}
			return payload
		case <-deadline:
			t.Fatalf("no completion message within %v", timeout)
		}
	}
}
