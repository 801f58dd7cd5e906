package eventbus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventBus_RoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := NewInMemoryEventBus(logger)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx, "cardstats.test.v1")
	require.NoError(t, err)

	msg := message.NewMessage("", []byte(`{"ok":true}`))
	require.NoError(t, bus.Publish("cardstats.test.v1", msg))
	assert.NotEmpty(t, msg.UUID, "publish assigns a UUID")

	select {
	case got := <-messages:
		assert.Equal(t, `{"ok":true}`, string(got.Payload))
		got.Ack()
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}

	assert.NoError(t, bus.EnsureStream(ctx, "cardstats", "cardstats.>"))
}

func TestDurableName(t *testing.T) {
	assert.Equal(t, "cardstats_cardstats_tournament_imported_v1", durableName(DurablePrefix, "cardstats.tournament.imported.v1"))
	assert.Equal(t, "cardstats_cardstats_rest", durableName(DurablePrefix, "cardstats.>"))
}
