package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/swubase/cardstats/app/eventbus"
	"github.com/swubase/cardstats/app/modules/cardstats"
	cardstatsevents "github.com/swubase/cardstats/app/modules/cardstats/events"
	"github.com/swubase/cardstats/config"
	"github.com/swubase/cardstats/pkg/observability"
)

// App holds the process-wide resources and the cardstats module.
type App struct {
	Config          *config.Config
	Observability   *observability.Observability
	DB              *bun.DB
	EventBus        *eventbus.EventBus
	Router          *message.Router
	CardStatsModule *cardstats.Module

	opsServer *http.Server
}

// Options selects which parts of the app Initialize wires up.
type Options struct {
	// Messaging connects to NATS and subscribes the trigger handlers.
	Messaging bool
}

// Initialize opens the database and, when asked, the event bus, then builds the module.
func Initialize(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	obs, err := observability.Init(ctx, config.ToObsConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	app := &App{Config: cfg, Observability: obs}
	app.DB = OpenDB(cfg.Postgres.DSN)

	var transport *cardstats.Transport
	if opts.Messaging && cfg.Stats.SubscriptionsEnabled {
		bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
		app.EventBus = bus

		if err := bus.EnsureStream(ctx, cardstatsevents.StreamName, cardstatsevents.StreamSubject); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to ensure stream: %w", err)
		}

		router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create Watermill router: %w", err)
		}
		app.Router = router
		transport = &cardstats.Transport{Router: router, Subscriber: bus, Publisher: bus}
	}

	module, err := cardstats.NewCardStatsModule(ctx, cfg, obs, app.DB, transport)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize cardstats module: %w", err)
	}
	app.CardStatsModule = module
	return app, nil
}

// OpenDB returns a bun handle on a pgdriver connector.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Run starts the ops server, the module and the message router, and blocks
// until ctx is canceled or the router stops.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Logger

	if addr := a.Config.Observability.MetricsAddress; addr != "" {
		a.opsServer = &http.Server{
			Addr:              addr,
			Handler:           a.opsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Starting ops server", slog.String("address", addr))
			if err := a.opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Ops server failed", slog.Any("error", err))
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go a.CardStatsModule.Run(ctx, &wg)

	var runErr error
	if a.Router != nil {
		runErr = a.Router.Run(ctx)
	} else {
		logger.Info("Trigger subscriptions disabled")
		<-ctx.Done()
	}

	a.CardStatsModule.Close()
	wg.Wait()
	return runErr
}

func (a *App) opsHandler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(a.Observability.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Close releases everything Initialize opened.
func (a *App) Close() error {
	var errs []error
	if a.opsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.opsServer.Shutdown(ctx))
		cancel()
	}
	if a.Router != nil {
		errs = append(errs, a.Router.Close())
	}
	if a.EventBus != nil {
		errs = append(errs, a.EventBus.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Observability != nil {
		errs = append(errs, a.Observability.Shutdown(context.Background()))
	}
	return errors.Join(errs...)
}
