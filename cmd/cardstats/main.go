package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/swubase/cardstats/app"
	"github.com/swubase/cardstats/config"
)

func main() {
	cliApp := &cli.App{
		Name:  "cardstats",
		Usage: "card statistics recompute engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CARDSTATS_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			recomputeCommand(),
			exportCommand(),
			chartCommand(),
			showCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// withApp runs fn against an app without trigger subscriptions.
func withApp(c *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	a, err := app.Initialize(c.Context, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(c.Context, a)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "subscribe to recompute triggers and serve ops endpoints",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Initialize(ctx, cfg, app.Options{Messaging: true})
			if err != nil {
				return err
			}
			defer a.Close()

			a.Observability.Logger.Info("Waiting for shutdown signal...")
			return a.Run(ctx)
		},
	}
}
