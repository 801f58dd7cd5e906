package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nats-io/nats.go/jetstream"
)

// EnsureStream creates the named JetStream stream, or adds subject to an
// existing one. It is a no-op on an in-memory bus.
func (eb *EventBus) EnsureStream(ctx context.Context, streamName, subject string) error {
	if eb.js == nil {
		return nil
	}

	stream, err := eb.js.Stream(ctx, streamName)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		if _, err := eb.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: []string{subject},
		}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", streamName, err)
		}
		eb.logger.InfoContext(ctx, "Created JetStream stream", slog.String("stream", streamName), slog.String("subject", subject))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check stream %s: %w", streamName, err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}
	if slices.Contains(info.Config.Subjects, subject) {
		return nil
	}

	info.Config.Subjects = append(info.Config.Subjects, subject)
	if _, err := eb.js.UpdateStream(ctx, info.Config); err != nil {
		return fmt.Errorf("failed to update stream %s with subject %s: %w", streamName, subject, err)
	}
	eb.logger.InfoContext(ctx, "Stream updated with new subject", slog.String("stream", streamName), slog.String("subject", subject))
	return nil
}
