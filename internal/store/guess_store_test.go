package store

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	users "github.com/AdamBeresnev/tourney-predictor/internal/user"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, database *sqlx.DB, name string) uuid.UUID {
	t.Helper()
	u := &users.User{ID: uuid.New(), Email: name + "@example.com", Username: name}
	require.NoError(t, NewUserStore(database).CreateUser(context.Background(), u))
	return u.ID
}

func saveGuess(t *testing.T, database *sqlx.DB, guess bracket.GameGuess) {
	t.Helper()
	ctx := context.Background()
	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, NewGuessStore(database).UpsertGuessTx(ctx, tx, &guess))
	require.NoError(t, tx.Commit())
}

func TestUpsertGuess(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewGuessStore(database)
	f := seedTournament(t, database)
	userID := createUser(t, database, "alice")
	ctx := context.Background()

	guess := bracket.GameGuess{
		ID:        uuid.New(),
		UserID:    userID,
		GameID:    f.games[0].ID,
		HomeScore: utils.Ptr(1),
		AwayScore: utils.Ptr(0),
	}
	saveGuess(t, database, guess)

	guesses, err := s.GetGuesses(ctx, userID, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bracket.GameGuess{guess.GameID: guess}, guesses)

	// A new id on the same game updates the existing row
	edited := guess
	edited.ID = uuid.New()
	edited.AwayScore = utils.Ptr(3)
	saveGuess(t, database, edited)

	guesses, err = s.GetGuesses(ctx, userID, f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, guesses, 1)
	assert.Equal(t, guess.ID, guesses[guess.GameID].ID)
	assert.Equal(t, 3, *guesses[guess.GameID].AwayScore)

	other, err := s.GetGuesses(ctx, users.GuestID, f.tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestUpdateGuessTeams(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewGuessStore(database)
	f := seedTournament(t, database)
	userID := createUser(t, database, "bob")
	ctx := context.Background()

	final := bracket.GameGuess{
		ID:         uuid.New(),
		UserID:     userID,
		GameID:     f.games[3].ID,
		HomeScore:  utils.Ptr(2),
		AwayScore:  utils.Ptr(2),
		HomeTeamID: utils.Ptr(f.teams[0].ID),
		AwayTeamID: utils.Ptr(f.teams[1].ID),

		HomePenaltyWinner: true,
	}
	saveGuess(t, database, final)

	changed := final
	changed.HomeTeamID = utils.Ptr(f.teams[2].ID)
	changed.AwayTeamID = nil
	changed.HomeScore = utils.Ptr(9)

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.UpdateGuessTeamsTx(ctx, tx, []bracket.GameGuess{changed}))

	inTx, err := s.GetGuessesTx(ctx, tx, userID, f.tournament.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	stored := inTx[final.GameID]
	assert.Equal(t, f.teams[2].ID, *stored.HomeTeamID)
	assert.Nil(t, stored.AwayTeamID)
	assert.Equal(t, 2, *stored.HomeScore, "only the identity is rewritten")
	assert.True(t, stored.HomePenaltyWinner)
}

func TestTournamentGuessesAndParticipants(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewGuessStore(database)
	f := seedTournament(t, database)
	alice := createUser(t, database, "alice")
	bob := createUser(t, database, "bob")
	carol := createUser(t, database, "carol")
	ctx := context.Background()

	for _, userID := range []uuid.UUID{alice, bob} {
		for _, g := range f.games[:2] {
			saveGuess(t, database, bracket.GameGuess{ID: uuid.New(), UserID: userID, GameID: g.ID, HomeScore: utils.Ptr(1), AwayScore: utils.Ptr(1)})
		}
	}
	require.NoError(t, s.UpsertHonorRollGuess(ctx, &bracket.HonorRollGuess{UserID: carol, TournamentID: f.tournament.ID, Champion: utils.Ptr(f.teams[0].ID)}))

	all, err := s.GetTournamentGuesses(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, all[alice], 2)
	assert.Len(t, all[bob], 2)

	participants, err := s.GetParticipants(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{alice, bob, carol}, participants)
}

func TestHonorRollGuess(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewGuessStore(database)
	f := seedTournament(t, database)
	userID := createUser(t, database, "dave")
	ctx := context.Background()

	_, err := s.GetHonorRollGuess(ctx, userID, f.tournament.ID)
	assert.Error(t, err)

	guess := bracket.HonorRollGuess{
		UserID:       userID,
		TournamentID: f.tournament.ID,
		Champion:     utils.Ptr(f.teams[0].ID),
		RunnerUp:     utils.Ptr(f.teams[1].ID),
	}
	require.NoError(t, s.UpsertHonorRollGuess(ctx, &guess))

	guess.RunnerUp = utils.Ptr(f.teams[2].ID)
	guess.ThirdPlace = utils.Ptr(f.teams[1].ID)
	require.NoError(t, s.UpsertHonorRollGuess(ctx, &guess))

	stored, err := s.GetHonorRollGuess(ctx, userID, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, guess, *stored)

	byUser, err := s.GetHonorRollGuesses(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bracket.HonorRollGuess{userID: guess}, byUser)
}
