package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/swubase/cardstats/app"
	cardstatsservice "github.com/swubase/cardstats/app/modules/cardstats/application"
	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

func recomputeCommand() *cli.Command {
	sub := func(name, usage string, run func(ctx context.Context, svc cardstatsservice.Service, id uuid.UUID) (*cardstatsservice.PropagationResult, error)) *cli.Command {
		return &cli.Command{
			Name:      name,
			Usage:     usage,
			ArgsUsage: "<id>",
			Action: func(c *cli.Context) error {
				id, err := uuid.Parse(c.Args().First())
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", c.Args().First(), err)
				}
				return withApp(c, func(ctx context.Context, a *app.App) error {
					res, err := run(ctx, a.CardStatsModule.Service, id)
					printResult(res)
					var rerr *cardstatsservice.RecomputeError
					if errors.As(err, &rerr) {
						return fmt.Errorf("recompute stopped at %s (%s): %w", rerr.Scope, rerr.Stage, rerr.Err)
					}
					return err
				})
			},
		}
	}

	single := func(kind cardstatsdomain.ScopeKind) func(ctx context.Context, svc cardstatsservice.Service, id uuid.UUID) (*cardstatsservice.PropagationResult, error) {
		return func(ctx context.Context, svc cardstatsservice.Service, id uuid.UUID) (*cardstatsservice.PropagationResult, error) {
			return svc.Recompute(ctx, cardstatsdomain.Scope{Kind: kind, ID: id}, false)
		}
	}

	return &cli.Command{
		Name:  "recompute",
		Usage: "recompute persisted statistics for one scope",
		Subcommands: []*cli.Command{
			sub("event", "rebuild one event from its decklists", single(cardstatsdomain.ScopeEvent)),
			sub("meta", "sum the event rollups of one meta", single(cardstatsdomain.ScopeMeta)),
			sub("group", "rebuild one tournament group", single(cardstatsdomain.ScopeGroup)),
			sub("propagate", "rebuild an event and every meta and group containing it",
				func(ctx context.Context, svc cardstatsservice.Service, id uuid.UUID) (*cardstatsservice.PropagationResult, error) {
					return svc.PropagateFromEvent(ctx, id)
				}),
		},
	}
}

func printResult(res *cardstatsservice.PropagationResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCOPE\tEVENTS\tCARD\tLEADER\tLEADER_BASE\tPLACEMENTS")
	for _, s := range res.Scopes() {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", s.Scope, s.MemberEvents,
			len(s.CardStats.Card), len(s.CardStats.Leader), len(s.CardStats.LeaderBase), len(s.Placements))
	}
	w.Flush()
}

func scopeFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "scope", Usage: "scope as kind:id", Required: true}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write a scope's statistics to an xlsx workbook",
		Flags: []cli.Flag{
			scopeFlag(),
			&cli.StringFlag{Name: "out", Usage: "output path", Value: "cardstats.xlsx"},
		},
		Action: func(c *cli.Context) error {
			scope, err := cardstatsdomain.ParseScope(c.String("scope"))
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, a *app.App) error {
				f, err := os.Create(c.String("out"))
				if err != nil {
					return err
				}
				if err := a.CardStatsModule.Service.ExportWorkbook(ctx, scope, f); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
}

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "render a play-rate bar chart of a scope's most played cards",
		Flags: []cli.Flag{
			scopeFlag(),
			&cli.StringFlag{Name: "out", Usage: "output path", Value: "cardstats.png"},
			&cli.IntFlag{Name: "top", Usage: "number of cards", Value: 15},
		},
		Action: func(c *cli.Context) error {
			scope, err := cardstatsdomain.ParseScope(c.String("scope"))
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, a *app.App) error {
				png, err := a.CardStatsModule.Service.RenderPlayRateChart(ctx, scope, c.Int("top"))
				if err != nil {
					return err
				}
				return os.WriteFile(c.String("out"), png, 0o644)
			})
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "print a scope's persisted rows for one granularity",
		Flags: []cli.Flag{
			scopeFlag(),
			&cli.StringFlag{Name: "granularity", Usage: "card, leader or leader_base", Value: string(cardstatsdomain.GranularityCard)},
			&cli.IntFlag{Name: "top", Usage: "limit rows, 0 for all", Value: 25},
		},
		Action: func(c *cli.Context) error {
			scope, err := cardstatsdomain.ParseScope(c.String("scope"))
			if err != nil {
				return err
			}
			g := cardstatsdomain.Granularity(c.String("granularity"))
			return withApp(c, func(ctx context.Context, a *app.App) error {
				rows, err := a.CardStatsModule.Service.GetCardStats(ctx, scope, g)
				if err != nil {
					return err
				}
				if top := c.Int("top"); top > 0 && len(rows) > top {
					rows = rows[:top]
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "LEADER\tBASE\tCARD\tMAIN\tSIDE\tDECKS\tWIN\tLOSE\tWIN_RATE")
				for _, r := range rows {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%.3f\n",
						r.Key.LeaderCardID, r.Key.BaseCardID, r.Key.CardID,
						r.Stat.CountMain, r.Stat.CountSide, r.Stat.DeckCount,
						r.Stat.MatchWin, r.Stat.MatchLose, r.Stat.WinRate())
				}
				return w.Flush()
			})
		},
	}
}
