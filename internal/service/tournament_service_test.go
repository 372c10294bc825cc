package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/simulation"
	"github.com/AdamBeresnev/tourney-predictor/internal/store"
	users "github.com/AdamBeresnev/tourney-predictor/internal/user"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cup is a two-group tournament of two teams each:
// 1 A1 v A2, 2 B1 v B2, 3 1A v 2B, 4 1B v 2A, 5 third place, 6 final.
type cup struct {
	id    uuid.UUID
	games []bracket.Game
	teams map[string]uuid.UUID
}

func (c cup) game(number int) bracket.Game {
	return c.games[number-1]
}

func newCup(t *testing.T, database *sqlx.DB) cup {
	t.Helper()
	ctx := ownerContext()
	tournamentStore := store.NewTournamentStore(database)

	groups := []GroupInput{
		{Teams: []TeamInput{{Name: "A1"}, {Name: "A2"}}},
		{Teams: []TeamInput{{Name: "B1"}, {Name: "B2"}}},
	}
	id, err := NewScheduleService(database, tournamentStore).CreateTournament(ctx, "Cup", groups, ScheduleOptions{ThirdPlaceGame: true})
	require.NoError(t, err)

	games, err := tournamentStore.GetGames(ctx, id)
	require.NoError(t, err)
	require.Len(t, games, 6)

	teams, err := tournamentStore.GetTeams(ctx, id)
	require.NoError(t, err)
	byName := map[string]uuid.UUID{}
	for _, team := range teams {
		byName[team.Name] = team.ID
	}
	return cup{id: id, games: games, teams: byName}
}

func createUser(t *testing.T, database *sqlx.DB, name string) uuid.UUID {
	t.Helper()
	u := &users.User{ID: uuid.New(), Email: name + "@example.com", Username: name}
	require.NoError(t, store.NewUserStore(database).CreateUser(context.Background(), u))
	return u.ID
}

func score(home, away int) ResultInput {
	return ResultInput{HomeScore: utils.Ptr(home), AwayScore: utils.Ptr(away)}
}

func TestRecordResult(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	tournamentStore := store.NewTournamentStore(database)
	tournamentService := NewTournamentService(database, tournamentStore, true)
	c := newCup(t, database)
	ctx := context.Background()
	owner := users.GuestID

	res, err := tournamentService.RecordResult(ctx, owner, c.game(1).ID, score(2, 0))
	require.NoError(t, err)
	assert.Equal(t, c.teams["A1"], *res.HomeTeamID)
	assert.Equal(t, c.teams["A2"], *res.AwayTeamID)

	tournament, err := tournamentStore.GetTournament(ctx, c.id)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentStarted, tournament.Status)

	snapshot, err := tournamentStore.GetStandings(ctx, c.id)
	require.NoError(t, err)
	require.Len(t, snapshot, 4)
	assert.Equal(t, c.teams["A1"], snapshot[0].TeamID)
	assert.Equal(t, 3, snapshot[0].Points)
	assert.True(t, snapshot[0].IsComplete)

	_, err = tournamentService.RecordResult(ctx, owner, c.game(3).ID, score(1, 0))
	assert.ErrorIs(t, err, ErrTeamsUndetermined, "group B is still open")

	_, err = tournamentService.RecordResult(ctx, owner, c.game(2).ID, score(3, 1))
	require.NoError(t, err)

	// Semi 1 is A1 v B2
	_, err = tournamentService.RecordResult(ctx, owner, c.game(3).ID, score(1, 1))
	assert.ErrorIs(t, err, ErrPenaltyWinnerRequired)

	shootout := score(1, 1)
	shootout.HomePenaltyScore, shootout.AwayPenaltyScore = utils.Ptr(4), utils.Ptr(3)
	res, err = tournamentService.RecordResult(ctx, owner, c.game(3).ID, shootout)
	require.NoError(t, err)
	assert.True(t, res.HomePenaltyWinner, "the penalty winner follows the shootout score")
	assert.Equal(t, c.teams["B2"], *res.AwayTeamID)

	// Semi 2 is B1 v A2
	_, err = tournamentService.RecordResult(ctx, owner, c.game(4).ID, score(0, 2))
	require.NoError(t, err)

	res, err = tournamentService.RecordResult(ctx, owner, c.game(6).ID, score(1, 0))
	require.NoError(t, err)
	assert.Equal(t, c.teams["A1"], *res.HomeTeamID)
	assert.Equal(t, c.teams["A2"], *res.AwayTeamID)

	tournament, err = tournamentStore.GetTournament(ctx, c.id)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentStarted, tournament.Status, "third place is still open")

	_, err = tournamentService.RecordResult(ctx, owner, c.game(5).ID, score(0, 1))
	require.NoError(t, err)

	overview, err := tournamentService.GetOverview(ctx, c.id)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, overview.Tournament.Status)
	require.True(t, overview.HonorRoll.Complete)
	assert.Equal(t, c.teams["A1"], *overview.HonorRoll.Champion)
	assert.Equal(t, c.teams["A2"], *overview.HonorRoll.RunnerUp)
	assert.Equal(t, c.teams["B1"], *overview.HonorRoll.ThirdPlace)
}

func TestRecordResultCorrectionRestampsLaterGames(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	tournamentStore := store.NewTournamentStore(database)
	tournamentService := NewTournamentService(database, tournamentStore, true)
	c := newCup(t, database)
	ctx := context.Background()
	owner := users.GuestID

	// Groups: A1 and B1 win, semis are A1 v B2 and B1 v A2
	for number, line := range map[int]ResultInput{1: score(2, 0), 2: score(3, 1)} {
		_, err := tournamentService.RecordResult(ctx, owner, c.game(number).ID, line)
		require.NoError(t, err)
	}
	for _, step := range []struct {
		number int
		line   ResultInput
	}{{3, score(1, 0)}, {4, score(0, 2)}, {5, score(0, 1)}, {6, score(1, 0)}} {
		_, err := tournamentService.RecordResult(ctx, owner, c.game(step.number).ID, step.line)
		require.NoError(t, err)
	}

	overview, err := tournamentService.GetOverview(ctx, c.id)
	require.NoError(t, err)
	assert.Equal(t, c.teams["A1"], *overview.HonorRoll.Champion)

	// B2 actually won the first semi
	_, err = tournamentService.RecordResult(ctx, owner, c.game(3).ID, score(0, 2))
	require.NoError(t, err)

	overview, err = tournamentService.GetOverview(ctx, c.id)
	require.NoError(t, err)
	final := overview.Bracket[c.game(6).ID]
	assert.Equal(t, c.teams["B2"], *final.HomeTeamID)
	require.True(t, overview.HonorRoll.Complete)
	assert.Equal(t, c.teams["B2"], *overview.HonorRoll.Champion, "the eliminated semifinalist is not champion")
	assert.Equal(t, c.teams["A2"], *overview.HonorRoll.RunnerUp)
	assert.Equal(t, c.teams["B1"], *overview.HonorRoll.ThirdPlace)

	results, err := tournamentStore.GetResults(ctx, c.id)
	require.NoError(t, err)
	assert.Equal(t, c.teams["B2"], *results[c.game(6).ID].HomeTeamID, "the final is restamped")
	assert.Equal(t, c.teams["A1"], *results[c.game(5).ID].HomeTeamID, "the third-place game is restamped")
	assert.Equal(t, c.teams["B1"], *results[c.game(5).ID].AwayTeamID)
}

func TestRecordResultRejects(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	tournamentService := NewTournamentService(database, store.NewTournamentStore(database), true)
	c := newCup(t, database)
	stranger := createUser(t, database, "stranger")

	testCases := []struct {
		name     string
		userID   uuid.UUID
		gameID   uuid.UUID
		input    ResultInput
		expected error
	}{
		{name: "not the owner", userID: stranger, gameID: c.game(1).ID, input: score(1, 0), expected: ErrForbidden},
		{name: "negative score", userID: users.GuestID, gameID: c.game(1).ID, input: score(-1, 0), expected: ErrInvalidScore},
		{name: "missing score", userID: users.GuestID, gameID: c.game(1).ID, input: ResultInput{HomeScore: utils.Ptr(1)}, expected: ErrInvalidScore},
		{name: "unknown game", userID: users.GuestID, gameID: uuid.New(), input: score(1, 0), expected: ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tournamentService.RecordResult(context.Background(), tc.userID, tc.gameID, tc.input)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestSetConductScore(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	tournamentService := NewTournamentService(database, store.NewTournamentStore(database), true)
	c := newCup(t, database)
	ctx := context.Background()

	_, err := tournamentService.RecordResult(ctx, users.GuestID, c.game(2).ID, score(1, 1))
	require.NoError(t, err)

	// Level on everything, so conduct decides
	require.NoError(t, tournamentService.SetConductScore(ctx, users.GuestID, c.teams["B1"], 3))
	require.NoError(t, tournamentService.SetConductScore(ctx, users.GuestID, c.teams["B2"], 1))

	overview, err := tournamentService.GetOverview(ctx, c.id)
	require.NoError(t, err)
	groupB := overview.Standings[*c.game(2).GroupID]
	require.Len(t, groupB, 2)
	assert.Equal(t, c.teams["B2"], groupB[0].TeamID)
	assert.Equal(t, 1, groupB[0].ConductScore)

	assert.ErrorIs(t, tournamentService.SetConductScore(ctx, createUser(t, database, "x"), c.teams["B1"], 0), ErrForbidden)
	assert.ErrorIs(t, tournamentService.SetConductScore(ctx, users.GuestID, uuid.New(), 0), ErrNotFound)
	assert.ErrorIs(t, tournamentService.SetConductScore(ctx, users.GuestID, c.teams["B1"], -2), ErrInvalidScore)
}

func TestGetOverview(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	tournamentService := NewTournamentService(database, store.NewTournamentStore(database), true)
	c := newCup(t, database)
	ctx := context.Background()

	_, err := tournamentService.GetOverview(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	overview, err := tournamentService.GetOverview(ctx, c.id)
	require.NoError(t, err)
	assert.Len(t, overview.Groups, 2)
	assert.Len(t, overview.TeamsByID(), 4)
	assert.Len(t, overview.Bracket, 4, "one entry per playoff game")
	for _, teams := range overview.Bracket {
		assert.False(t, teams.Complete(), "nothing is known before the groups finish")
	}
	assert.False(t, overview.HonorRoll.Complete)

	tournaments, err := tournamentService.ListTournaments(ctx)
	require.NoError(t, err)
	assert.Len(t, tournaments, 1)

	owned, err := tournamentService.GetTournamentsForUser(ownerContext())
	require.NoError(t, err)
	assert.Len(t, owned, 1)
	_, err = tournamentService.GetTournamentsForUser(ctx)
	assert.ErrorIs(t, err, ErrForbidden)

	tournament, err := tournamentService.GetTournament(ctx, c.id)
	require.NoError(t, err)
	assert.Equal(t, "Cup", tournament.Name)
	_, err = tournamentService.GetTournament(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSimulate(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	tournamentStore := store.NewTournamentStore(database)
	tournamentService := NewTournamentService(database, tournamentStore, true)
	c := newCup(t, database)
	ctx := context.Background()

	_, err := tournamentService.RecordResult(ctx, users.GuestID, c.game(1).ID, score(5, 0))
	require.NoError(t, err)

	preview, err := tournamentService.Simulate(ctx, c.id, simulation.NewRandom(7, 3))
	require.NoError(t, err)

	assert.False(t, preview.Simulated[c.game(1).ID], "real results are kept")
	assert.Equal(t, 5, *preview.Results[c.game(1).ID].HomeScore)
	for _, n := range []int{2, 3, 4, 5, 6} {
		assert.True(t, preview.Simulated[c.game(n).ID], "game %d", n)
	}
	assert.True(t, preview.HonorRoll.Complete)
	assert.NotNil(t, preview.HonorRoll.Champion)
	assert.Equal(t, c.teams["A1"], *preview.Bracket[c.game(3).ID].HomeTeamID)

	again, err := tournamentService.Simulate(ctx, c.id, simulation.NewRandom(7, 3))
	require.NoError(t, err)
	assert.Equal(t, preview.HonorRoll, again.HonorRoll, "the same seed gives the same tournament")

	stored, err := tournamentStore.GetResults(ctx, c.id)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "simulation writes nothing")

	none, err := tournamentService.Simulate(ctx, c.id, simulation.None{})
	require.NoError(t, err)
	assert.Empty(t, none.Simulated)
	assert.False(t, none.HonorRoll.Complete)
}
