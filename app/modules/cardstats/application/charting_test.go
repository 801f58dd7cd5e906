package cardstatsservice

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestGeneratePlayRateChart(t *testing.T) {
	ranked := cardstatsdomain.StatMap{
		cardstatsdomain.CardKey("cardX"): {DeckCount: 4},
		cardstatsdomain.CardKey("cardY"): {DeckCount: 1},
	}.Ranked()

	png, err := GeneratePlayRateChart(ranked, 4, 10, DefaultPalette)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestGeneratePlayRateChart_NoData(t *testing.T) {
	png, err := GeneratePlayRateChart(nil, 0, 10, DefaultPalette)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderPlayRateChart(t *testing.T) {
	e := uuid.New()
	repo := NewFakeCardStatsRepo()
	seedTwoDeckEvent(repo, e)
	svc := newTestService(repo, nil)
	ctx := context.Background()
	_, err := svc.RecomputeEvent(ctx, e)
	require.NoError(t, err)

	png, err := svc.RenderPlayRateChart(ctx, cardstatsdomain.EventScope(e), 1)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}
