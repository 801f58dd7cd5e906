package cardstatsservice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

// ChartPalette holds the colours used for rendered charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Text       drawing.Color
}

// DefaultPalette is used when rendering from the service.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("1b1f24"),
	Bar:        drawing.ColorFromHex("d4a72c"),
	Text:       drawing.ColorFromHex("e6edf3"),
}

const defaultTopN = 15

func (s *CardStatsService) RenderPlayRateChart(ctx context.Context, scope cardstatsdomain.Scope, topN int) ([]byte, error) {
	return withTelemetry(s, ctx, "RenderPlayRateChart", scope, func(ctx context.Context) ([]byte, error) {
		stats, err := s.repo.GetCardStats(ctx, s.idb(), cardstatsdomain.GranularityCard, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to load card stats: %w", err)
		}
		totalDecks, err := s.totalDecks(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to count decks: %w", err)
		}
		return GeneratePlayRateChart(stats.Ranked(), totalDecks, topN, DefaultPalette)
	})
}

// GeneratePlayRateChart renders the first topN ranked cards as a PNG bar chart
// of play rate in percent.
func GeneratePlayRateChart(ranked []cardstatsdomain.KeyedStat, totalDecks, topN int, palette ChartPalette) ([]byte, error) {
	if topN <= 0 {
		topN = defaultTopN
	}
	if len(ranked) == 0 || totalDecks == 0 {
		return renderNoDataPlaceholder(palette)
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	bars := make([]chart.Value, 0, len(ranked))
	for _, row := range ranked {
		bars = append(bars, chart.Value{
			Label: row.Key.CardID,
			Value: row.Stat.PlayRate(totalDecks) * 100,
			Style: chart.Style{
				FillColor:   palette.Bar,
				StrokeColor: palette.Bar,
			},
		})
	}

	graph := chart.BarChart{
		Title:  "Play rate (%)",
		Width:  max(400, 60*len(bars)),
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Bottom: 20, Left: 10, Right: 10},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		TitleStyle: chart.Style{FontColor: palette.Text},
		XAxis:      chart.Style{FontColor: palette.Text, TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		BarWidth: 40,
		Bars:     bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	graph := chart.BarChart{
		Title:  "No card statistics found",
		Width:  400,
		Height: 200,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Bottom: 20, Left: 10, Right: 10},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		TitleStyle: chart.Style{FontColor: palette.Text},
		XAxis:      chart.Style{FontColor: palette.Text},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		BarWidth: 40,
		Bars:     []chart.Value{{Label: "-", Value: 0, Style: chart.Style{FillColor: palette.Bar}}},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
