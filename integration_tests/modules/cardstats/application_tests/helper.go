package cardstatsintegrationtests

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	cardstatsservice "github.com/swubase/cardstats/app/modules/cardstats/application"
	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
	cardstatsdb "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/repositories"
	"github.com/swubase/cardstats/integration_tests/testutils"
	cardstatsmetrics "github.com/swubase/cardstats/pkg/metrics/cardstats"
)

type TestDeps struct {
	Ctx     context.Context
	BunDB   *bun.DB
	Repo    cardstatsdb.Repository
	Service cardstatsservice.Service
}

type setupOptions struct {
	batchSize      int
	canonicalBases map[string]string
}

type SetupOption func(*setupOptions)

func WithBatchSize(n int) SetupOption {
	return func(o *setupOptions) { o.batchSize = n }
}

func WithCanonicalBases(table map[string]string) SetupOption {
	return func(o *setupOptions) { o.canonicalBases = table }
}

// SetupTestCardStatsService returns a service over a freshly truncated database.
func SetupTestCardStatsService(t *testing.T, opts ...SetupOption) TestDeps {
	t.Helper()

	env := testutils.GetOrCreateTestEnv(t)
	env.Reset(t)

	o := setupOptions{batchSize: cardstatsdb.DefaultBatchSize}
	for _, opt := range opts {
		opt(&o)
	}

	repo := cardstatsdb.NewRepository(env.DB, o.batchSize)
	service := cardstatsservice.NewCardStatsService(
		repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		cardstatsmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test_cardstats_service"),
		env.DB,
		cardstatsdomain.NewBaseCanonicalizer(o.canonicalBases),
	)

	return TestDeps{Ctx: env.Ctx, BunDB: env.DB, Repo: repo, Service: service}
}

// statsByKey reads a scope's persisted rows back into a StatMap.
func statsByKey(t *testing.T, deps TestDeps, scope cardstatsdomain.Scope, g cardstatsdomain.Granularity) cardstatsdomain.StatMap {
	t.Helper()
	stats, err := deps.Repo.GetCardStats(deps.Ctx, deps.BunDB, g, scope)
	if err != nil {
		t.Fatalf("GetCardStats(%s, %s): %v", scope, g, err)
	}
	return stats
}

func seed(t *testing.T, deps TestDeps, f *testutils.Fixture) {
	t.Helper()
	if err := f.Insert(deps.Ctx, deps.BunDB); err != nil {
		t.Fatalf("Failed to seed fixture: %v", err)
	}
}
