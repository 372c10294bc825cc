package store

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/db"
	users "github.com/AdamBeresnev/tourney-predictor/internal/user"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open("file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// Every new connection would get its own empty in-memory database
	database.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"), "Failed to apply migrations")
	return database
}

type fixture struct {
	tournament bracket.Tournament
	group      bracket.Group
	teams      []bracket.Team
	games      []bracket.Game
}

// seedTournament stores a one-group tournament with two group games and a final fed by
// the group's top two.
func seedTournament(t *testing.T, database *sqlx.DB) fixture {
	t.Helper()
	ctx := context.Background()
	s := NewTournamentStore(database)

	f := fixture{
		tournament: bracket.Tournament{ID: uuid.New(), OwnerID: users.GuestID, Name: "Test Cup", Status: bracket.TournamentStarted},
	}
	f.group = bracket.Group{ID: uuid.New(), TournamentID: f.tournament.ID, Name: "A"}
	for _, name := range []string{"Argentina", "Brazil", "Chile"} {
		f.teams = append(f.teams, bracket.Team{
			ID:           uuid.New(),
			TournamentID: f.tournament.ID,
			GroupID:      utils.Ptr(f.group.ID),
			Name:         name,
			ShortName:    name[:3],
		})
	}
	f.games = []bracket.Game{
		{
			ID: uuid.New(), TournamentID: f.tournament.ID, GameNumber: 1, Stage: bracket.StageGroup, RoundNumber: 1, GroupID: utils.Ptr(f.group.ID),
			Home: bracket.TeamSlot{TeamID: f.teams[0].ID}, Away: bracket.TeamSlot{TeamID: f.teams[1].ID},
		},
		{
			ID: uuid.New(), TournamentID: f.tournament.ID, GameNumber: 2, Stage: bracket.StageGroup, RoundNumber: 2, GroupID: utils.Ptr(f.group.ID),
			Home: bracket.TeamSlot{TeamID: f.teams[1].ID}, Away: bracket.TeamSlot{TeamID: f.teams[2].ID},
		},
		{
			ID: uuid.New(), TournamentID: f.tournament.ID, GameNumber: 3, Stage: bracket.StageSemiFinal, RoundNumber: 1,
			Home: bracket.GroupPositionRule{GroupID: f.group.ID, Position: 1}, Away: bracket.GroupPositionRule{GroupID: f.group.ID, Position: 2},
		},
		{
			ID: uuid.New(), TournamentID: f.tournament.ID, GameNumber: 4, Stage: bracket.StageFinal, RoundNumber: 2,
			Home: bracket.TeamRule{SourceGameNumber: 3, WantsWinner: true}, Away: nil,
		},
	}

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateTournament(ctx, tx, &f.tournament))
	require.NoError(t, s.CreateGroups(ctx, tx, []bracket.Group{f.group}))
	require.NoError(t, s.CreateTeams(ctx, tx, f.teams))
	require.NoError(t, s.CreateGames(ctx, tx, f.games))
	require.NoError(t, tx.Commit())

	return f
}

func TestCreateTournament(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewTournamentStore(database)
	f := seedTournament(t, database)
	ctx := context.Background()

	fetched, err := s.GetTournament(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, f.tournament.ID, fetched.ID)
	assert.Equal(t, users.GuestID, fetched.OwnerID)
	assert.Equal(t, "Test Cup", fetched.Name)
	assert.Equal(t, bracket.TournamentStarted, fetched.Status)
	assert.False(t, fetched.CreatedAt.IsZero())

	owned, err := s.GetTournamentsByOwner(ctx, users.GuestID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	all, err := s.ListTournaments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.GetTournament(ctx, uuid.New())
	assert.Error(t, err)
}

func TestGroupsAndTeams(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewTournamentStore(database)
	f := seedTournament(t, database)
	ctx := context.Background()

	groups, err := s.GetGroups(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, []bracket.Group{f.group}, groups)

	teams, err := s.GetTeams(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, f.teams, teams, "teams come back in insertion order")

	team, err := s.GetTeam(ctx, f.teams[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Brazil", team.Name)
	assert.Equal(t, "Bra", team.ShortName)
}

func TestGamesRoundTripSlots(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewTournamentStore(database)
	f := seedTournament(t, database)
	ctx := context.Background()

	games, err := s.GetGames(ctx, f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, games, 4)

	for i, g := range games {
		assert.Equal(t, f.games[i], g, "game %d", g.GameNumber)
	}
	assert.Nil(t, games[3].Away, "an undetermined slot stays nil")

	game, err := s.GetGame(ctx, f.games[2].ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.GroupPositionRule{GroupID: f.group.ID, Position: 1}, game.Home)
}

func TestUpsertResult(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewTournamentStore(database)
	f := seedTournament(t, database)
	ctx := context.Background()

	result := bracket.GameResult{
		GameID:     f.games[0].ID,
		HomeScore:  utils.Ptr(2),
		AwayScore:  utils.Ptr(1),
		HomeTeamID: utils.Ptr(f.teams[0].ID),
		AwayTeamID: utils.Ptr(f.teams[1].ID),
	}

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.UpsertResultTx(ctx, tx, &result))
	require.NoError(t, tx.Commit())

	results, err := s.GetResults(ctx, f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, result, results[f.games[0].ID])

	result.AwayScore = utils.Ptr(2)
	result.HomePenaltyWinner = true
	result.HomePenaltyScore = utils.Ptr(5)
	result.AwayPenaltyScore = utils.Ptr(4)

	tx, err = database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.UpsertResultTx(ctx, tx, &result))

	inTx, err := s.GetResultsTx(ctx, tx, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, result, inTx[f.games[0].ID])
	require.NoError(t, tx.Commit())

	results, err = s.GetResults(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Len(t, results, 1, "a second write updates the same row")
	assert.Equal(t, bracket.SideHome, results[f.games[0].ID].PenaltyWinner())
}

func TestConductScores(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewTournamentStore(database)
	f := seedTournament(t, database)
	ctx := context.Background()

	conduct, err := s.GetConductScores(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, conduct)

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetConductScoreTx(ctx, tx, f.teams[0].ID, 3))
	require.NoError(t, s.SetConductScoreTx(ctx, tx, f.teams[0].ID, 5))
	require.NoError(t, s.SetConductScoreTx(ctx, tx, f.teams[2].ID, 1))
	require.NoError(t, tx.Commit())

	conduct, err = s.GetConductScores(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{f.teams[0].ID: 5, f.teams[2].ID: 1}, conduct)
}

func TestReplaceStandings(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewTournamentStore(database)
	f := seedTournament(t, database)
	ctx := context.Background()

	snapshot := func(points ...int) []bracket.TeamStats {
		stats := make([]bracket.TeamStats, len(points))
		for i, p := range points {
			stats[i] = bracket.TeamStats{TeamID: f.teams[i].ID, GroupID: f.group.ID, Position: i + 1, Points: p}
		}
		return stats
	}

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceStandingsTx(ctx, tx, f.tournament.ID, snapshot(3, 0, 0)))
	require.NoError(t, tx.Commit())

	tx, err = database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceStandingsTx(ctx, tx, f.tournament.ID, snapshot(6, 3, 0)))
	require.NoError(t, tx.Commit())

	stored, err := s.GetStandings(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot(6, 3, 0), stored)
}

func TestUpdateTournamentStatus(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewTournamentStore(database)
	f := seedTournament(t, database)
	ctx := context.Background()

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.UpdateTournamentStatusTx(ctx, tx, f.tournament.ID, bracket.TournamentCompleted))
	require.NoError(t, tx.Commit())

	fetched, err := s.GetTournament(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, fetched.Status)
}
