package cardstats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	cardstatsservice "github.com/swubase/cardstats/app/modules/cardstats/application"
	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
	cardstatsdb "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/repositories"
	cardstatsrouter "github.com/swubase/cardstats/app/modules/cardstats/infrastructure/router"
	"github.com/swubase/cardstats/config"
	cardstatsmetrics "github.com/swubase/cardstats/pkg/metrics/cardstats"
	"github.com/swubase/cardstats/pkg/observability"
)

// Module represents the card statistics module.
type Module struct {
	Service cardstatsservice.Service
	Router  *cardstatsrouter.CardStatsRouter

	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// Transport carries the message router and bus the module subscribes on.
// A nil Transport builds the module without trigger subscriptions.
type Transport struct {
	Router     *message.Router
	Subscriber message.Subscriber
	Publisher  message.Publisher
}

// NewCardStatsModule creates a new instance of the card statistics module.
func NewCardStatsModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	transport *Transport,
) (*Module, error) {
	logger := obs.Logger.With(slog.String("module", "cardstats"))
	logger.Info("cardstats.NewCardStatsModule called")

	var metrics cardstatsmetrics.CardStatsMetrics = cardstatsmetrics.NewNoop()
	if obs.Registry != nil {
		metrics = cardstatsmetrics.NewPrometheus(obs.Registry)
	}

	repo := cardstatsdb.NewRepository(db, cfg.Stats.BatchSize)
	canonical := cardstatsdomain.NewBaseCanonicalizer(cfg.Stats.CanonicalBases)
	service := cardstatsservice.NewCardStatsService(repo, logger, metrics, obs.Tracer, db, canonical)

	module := &Module{Service: service, logger: logger}
	if transport == nil {
		return module, nil
	}

	router := cardstatsrouter.NewCardStatsRouter(logger, transport.Router, transport.Subscriber, transport.Publisher, obs.Tracer, obs.Registry)
	if err := router.Configure(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to configure cardstats router: %w", err)
	}
	module.Router = router
	return module, nil
}

// Run blocks until ctx is canceled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.Info("Starting cardstats module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Cardstats module goroutine stopped")
}

func (m *Module) Close() error {
	m.logger.Info("Stopping cardstats module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.logger.Info("Cardstats module stopped")
	return nil
}
