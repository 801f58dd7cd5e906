package cardstatsservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
	cardstatsdb "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/repositories"
	cardstatsmetrics "github.com/swubase/cardstats/pkg/metrics/cardstats"
)

const serviceName = "CardStatsService"

// CardStatsService implements the Service interface.
type CardStatsService struct {
	repo    cardstatsdb.Repository
	logger  *slog.Logger
	metrics cardstatsmetrics.CardStatsMetrics
	tracer  trace.Tracer
	db      *bun.DB

	events     *cardstatsdomain.EventAggregator
	placements *cardstatsdomain.PlacementAggregator
	locks      *scopeLocks
}

// NewCardStatsService creates a new CardStatsService. canonicalBase may be nil.
func NewCardStatsService(
	repo cardstatsdb.Repository,
	logger *slog.Logger,
	metrics cardstatsmetrics.CardStatsMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	canonicalBase cardstatsdomain.BaseCanonicalizer,
) *CardStatsService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = cardstatsmetrics.NewNoop()
	}
	return &CardStatsService{
		repo:       repo,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		db:         db,
		events:     cardstatsdomain.NewEventAggregator(canonicalBase),
		placements: cardstatsdomain.NewPlacementAggregator(canonicalBase),
		locks:      newScopeLocks(),
	}
}

var _ Service = (*CardStatsService)(nil)

// idb hands repositories a nil interface rather than a typed nil when no db is set.
func (s *CardStatsService) idb() bun.IDB {
	if s.db == nil {
		return nil
	}
	return s.db
}

// withTelemetry wraps a service operation with tracing, metrics, logging and panic recovery.
func withTelemetry[T any](
	s *CardStatsService,
	ctx context.Context,
	operationName string,
	scope cardstatsdomain.Scope,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("scope_kind", string(scope.Kind)),
			attribute.String("scope_id", scope.ID.String()),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	attrs := []any{
		slog.String("operation", operationName),
		slog.String("scope_kind", string(scope.Kind)),
		slog.String("scope_id", scope.ID.String()),
	}

	s.logger.InfoContext(ctx, "Operation triggered", attrs...)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered", append(attrs, slog.Any("error", err))...)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error", append(attrs, slog.Any("error", wrappedErr))...)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	s.logger.InfoContext(ctx, "Operation completed successfully", attrs...)
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}
