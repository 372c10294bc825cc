package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/scoring"
	"github.com/AdamBeresnev/tourney-predictor/internal/store"
	users "github.com/AdamBeresnev/tourney-predictor/internal/user"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLeaderboard(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	tournamentStore := store.NewTournamentStore(database)
	guessStore := store.NewGuessStore(database)
	tournamentService := NewTournamentService(database, tournamentStore, true)
	guessService := NewGuessService(database, tournamentStore, guessStore, true)
	leaderboardService := NewLeaderboardService(tournamentStore, guessStore, store.NewUserStore(database), LeaderboardOptions{
		HeadToHead:      true,
		HonorRollPoints: scoring.DefaultHonorRollPoints,
		Concurrency:     2,
	})
	c := newCup(t, database)
	ctx := context.Background()

	alice := createUser(t, database, "alice")
	bob := createUser(t, database, "bob")
	carol := createUser(t, database, "carol")

	withPens := func(home, away int, side bracket.Side) GuessInput {
		g := guessOf(home, away)
		g.PenaltyWinner = side
		return g
	}
	guesses := []struct {
		user  uuid.UUID
		game  int
		input GuessInput
	}{
		{alice, 1, guessOf(2, 1)},
		{alice, 2, guessOf(1, 0)},
		{alice, 3, guessOf(2, 0)},
		{alice, 4, guessOf(0, 1)},
		{alice, 5, withPens(0, 0, bracket.SideAway)},
		{alice, 6, guessOf(3, 0)},
		{bob, 1, guessOf(0, 0)},
		{bob, 2, guessOf(2, 0)},
	}
	for _, g := range guesses {
		_, err := guessService.SaveGuess(ctx, g.user, c.game(g.game).ID, g.input)
		require.NoError(t, err, "game %d", g.game)
	}

	_, err := guessService.SaveHonorRollGuess(ctx, alice, c.id, HonorRollInput{
		Champion: utils.Ptr(c.teams["A1"]), RunnerUp: utils.Ptr(c.teams["A2"]), ThirdPlace: utils.Ptr(c.teams["B2"]),
	})
	require.NoError(t, err)
	_, err = guessService.SaveHonorRollGuess(ctx, carol, c.id, HonorRollInput{Champion: utils.Ptr(c.teams["A1"])})
	require.NoError(t, err)

	shootout := score(1, 1)
	shootout.PenaltyWinner = bracket.SideHome
	for _, r := range []struct {
		game  int
		input ResultInput
	}{
		{1, score(2, 1)},
		{2, score(1, 0)},
		{3, shootout}, // A1 v B2
		{4, score(0, 1)}, // B1 v A2
		{5, score(2, 0)}, // B2 v B1
		{6, score(3, 0)}, // A1 v A2
	} {
		_, err := tournamentService.RecordResult(ctx, users.GuestID, c.game(r.game).ID, r.input)
		require.NoError(t, err, "game %d", r.game)
	}

	board, err := leaderboardService.GetLeaderboard(ctx, c.id)
	require.NoError(t, err)
	require.Len(t, board, 3)

	assert.Equal(t, alice, board[0].UserID)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "alice", board[0].Username)
	assert.Equal(t, scoring.Breakdown{
		GroupStage:      4,
		Playoffs:        5,
		Qualifiers:      4,
		HonorRoll:       9,
		ExactScores:     4,
		CorrectOutcomes: 1,
	}, board[0].Breakdown)
	assert.Equal(t, 22, board[0].Total)

	// bob and carol are level and share second place, ordered by name
	assert.Equal(t, bob, board[1].UserID)
	assert.Equal(t, 5, board[1].Total)
	assert.Equal(t, 1, board[1].Breakdown.GroupStage)
	assert.Equal(t, 4, board[1].Breakdown.Qualifiers)
	assert.Equal(t, 2, board[1].Rank)

	assert.Equal(t, carol, board[2].UserID)
	assert.Equal(t, 5, board[2].Total)
	assert.Equal(t, 0, board[2].Breakdown.Qualifiers, "no group guesses means no qualifier picks")
	assert.Equal(t, 2, board[2].Rank)

	single, err := leaderboardService.Score(ctx, alice, c.id)
	require.NoError(t, err)
	assert.Equal(t, board[0].Breakdown, single)
}

func TestGetLeaderboardEmpty(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	tournamentStore := store.NewTournamentStore(database)
	guessStore := store.NewGuessStore(database)
	leaderboardService := NewLeaderboardService(tournamentStore, guessStore, store.NewUserStore(database), LeaderboardOptions{})
	c := newCup(t, database)

	board, err := leaderboardService.GetLeaderboard(context.Background(), c.id)
	require.NoError(t, err)
	assert.Empty(t, board)

	_, err = leaderboardService.GetLeaderboard(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRank(t *testing.T) {
	entries := []LeaderboardEntry{
		{Username: "dan", Total: 3, Breakdown: scoring.Breakdown{ExactScores: 1}},
		{Username: "eve", Total: 7},
		{Username: "ann", Total: 3, Breakdown: scoring.Breakdown{ExactScores: 1}},
		{Username: "cat", Total: 3, Breakdown: scoring.Breakdown{ExactScores: 0}},
	}
	rank(entries)

	var names []string
	var ranks []int
	for _, e := range entries {
		names = append(names, e.Username)
		ranks = append(ranks, e.Rank)
	}
	assert.Equal(t, []string{"eve", "ann", "dan", "cat"}, names)
	assert.Equal(t, []int{1, 2, 2, 4}, ranks)
}
