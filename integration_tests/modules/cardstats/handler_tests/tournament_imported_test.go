package cardstatshandlerintegrationtests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
	cardstatsevents "github.com/swubase/cardstats/app/modules/cardstats/events"
	"github.com/swubase/cardstats/integration_tests/testutils"
)

func TestHandleTournamentImported_PropagatesOverNATS(t *testing.T) {
	deps := SetupHandlerTest(t)
	gen := testutils.NewTestDataGenerator(21)

	var f testutils.Fixture
	metaID := gen.Meta(&f)
	eventID := gen.Tournament(&f, &metaID)
	gen.RandomDecks(&f, eventID, 6, 5)
	groupID := gen.Group(&f, eventID)
	require.NoError(t, f.Insert(deps.Env.Ctx, deps.Env.DB))

	trigger := publish(t, deps, cardstatsevents.TournamentImportedV1, cardstatsevents.TournamentImportedPayloadV1{TournamentID: eventID})
	completed := waitForCompletion(t, deps, trigger, 20*time.Second)

	assert.Equal(t, "HandleTournamentImported", completed.Trigger)
	require.Len(t, completed.Scopes, 3)
	assert.Equal(t, string(cardstatsdomain.ScopeEvent), completed.Scopes[0].ScopeKind)
	assert.Equal(t, metaID, completed.Scopes[1].ScopeID)
	assert.Equal(t, groupID, completed.Scopes[2].ScopeID)

	for _, scope := range []cardstatsdomain.Scope{
		cardstatsdomain.EventScope(eventID),
		cardstatsdomain.MetaScope(metaID),
		cardstatsdomain.GroupScope(groupID),
	} {
		n, err := testutils.CountRows(deps.Env.Ctx, deps.Env.DB, "card_stats", "scope_id", scope.ID)
		require.NoError(t, err)
		assert.Positive(t, n, "card rows for %s", scope)
	}

	summary, err := deps.Module.Service.GetGroupSummary(deps.Env.Ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 6, summary.TotalDeckCount)
}

func TestHandleRecomputeRequested_GroupScope(t *testing.T) {
	deps := SetupHandlerTest(t)
	gen := testutils.NewTestDataGenerator(22)

	var f testutils.Fixture
	e1 := gen.Tournament(&f, nil)
	e2 := gen.Tournament(&f, nil)
	gen.RandomDecks(&f, e1, 3, 4)
	gen.RandomDecks(&f, e2, 2, 4)
	groupID := gen.Group(&f, e1, e2)
	require.NoError(t, f.Insert(deps.Env.Ctx, deps.Env.DB))

	trigger := publish(t, deps, cardstatsevents.RecomputeRequestedV1, cardstatsevents.RecomputeRequestedPayloadV1{
		ScopeKind: string(cardstatsdomain.ScopeGroup),
		ScopeID:   groupID,
	})
	completed := waitForCompletion(t, deps, trigger, 20*time.Second)

	require.Len(t, completed.Scopes, 1)
	assert.Equal(t, groupID, completed.Scopes[0].ScopeID)
	assert.Equal(t, 2, completed.Scopes[0].MemberEvents)

	placements, err := deps.Module.Service.GetPlacementStats(deps.Env.Ctx, groupID)
	require.NoError(t, err)
	var total int
	for _, p := range placements {
		total += p.TotalCount
	}
	assert.Equal(t, 5, total)
}
