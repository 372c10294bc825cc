package simulation

import (
	"testing"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/resolver"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var teams = bracket.ResolvedTeams{HomeTeamID: utils.Ptr(uuid.New()), AwayTeamID: utils.Ptr(uuid.New())}

func TestNone(t *testing.T) {
	_, ok := None{}.Simulate(bracket.Game{GameNumber: 1}, teams)
	assert.False(t, ok)
}

func TestRandomIsDeterministic(t *testing.T) {
	game := bracket.Game{ID: uuid.New(), GameNumber: 7, Stage: bracket.StageGroup}

	first, ok := NewRandom(42, 4).Simulate(game, teams)
	require.True(t, ok)
	second, ok := NewRandom(42, 4).Simulate(game, teams)
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, game.ID, first.GameID)
	assert.Equal(t, teams.HomeTeamID, first.HomeTeamID)
	assert.True(t, first.IsFinal())
	assert.LessOrEqual(t, *first.HomeScore, 4)
	assert.LessOrEqual(t, *first.AwayScore, 4)
}

func TestRandomNeedsBothTeams(t *testing.T) {
	_, ok := NewRandom(1, 3).Simulate(bracket.Game{GameNumber: 1}, bracket.ResolvedTeams{HomeTeamID: teams.HomeTeamID})
	assert.False(t, ok)
}

func TestRandomDecidesPlayoffDraws(t *testing.T) {
	// With no goals possible every game is a draw
	sim := NewRandom(3, 0)

	for n := 1; n <= 20; n++ {
		playoff, ok := sim.Simulate(bracket.Game{GameNumber: n, Stage: bracket.StageFinal}, teams)
		require.True(t, ok)
		assert.NotEqual(t, bracket.SideNone, playoff.PenaltyWinner(), "game %d", n)
		assert.NotNil(t, resolver.Winner(playoff, teams.HomeTeamID, teams.AwayTeamID))
		assert.NotEqual(t, *playoff.HomePenaltyScore, *playoff.AwayPenaltyScore)

		group, ok := sim.Simulate(bracket.Game{GameNumber: n, Stage: bracket.StageGroup}, teams)
		require.True(t, ok)
		assert.Equal(t, bracket.SideNone, group.PenaltyWinner())
		assert.Nil(t, group.HomePenaltyScore)
	}
}
