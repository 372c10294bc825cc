package store

import (
	"context"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GuessStore persists user predictions. The home_team_id/away_team_id columns of a guess
// cache the bracket identity it was made for, and are rewritten when the user's bracket
// changes upstream.
type GuessStore struct {
	db *sqlx.DB
}

func NewGuessStore(db *sqlx.DB) *GuessStore {
	return &GuessStore{db: db}
}

const (
	guessColumns = `g.id, g.user_id, g.game_id, g.home_score, g.away_score,
		g.home_penalty_winner, g.away_penalty_winner, g.home_team_id, g.away_team_id`

	upsertGuessQuery = `
		INSERT INTO game_guesses (id, user_id, game_id, home_score, away_score,
			home_penalty_winner, away_penalty_winner, home_team_id, away_team_id)
		VALUES (:id, :user_id, :game_id, :home_score, :away_score,
			:home_penalty_winner, :away_penalty_winner, :home_team_id, :away_team_id)
		ON CONFLICT (user_id, game_id) DO UPDATE SET
			home_score = excluded.home_score,
			away_score = excluded.away_score,
			home_penalty_winner = excluded.home_penalty_winner,
			away_penalty_winner = excluded.away_penalty_winner,
			home_team_id = excluded.home_team_id,
			away_team_id = excluded.away_team_id,
			updated_at = CURRENT_TIMESTAMP
	`
	updateGuessTeamsQuery = `
		UPDATE game_guesses SET
			home_team_id = :home_team_id,
			away_team_id = :away_team_id,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = :user_id AND game_id = :game_id
	`
	upsertHonorRollQuery = `
		INSERT INTO honor_roll_guesses (user_id, tournament_id, champion_id, runner_up_id, third_place_id)
		VALUES (:user_id, :tournament_id, :champion_id, :runner_up_id, :third_place_id)
		ON CONFLICT (user_id, tournament_id) DO UPDATE SET
			champion_id = excluded.champion_id,
			runner_up_id = excluded.runner_up_id,
			third_place_id = excluded.third_place_id
	`
)

// GetGuesses returns a user's guesses for one tournament keyed by game id.
func (s *GuessStore) GetGuesses(ctx context.Context, userID, tournamentID uuid.UUID) (map[uuid.UUID]bracket.GameGuess, error) {
	return getGuesses(ctx, s.db, userID, tournamentID)
}

func (s *GuessStore) GetGuessesTx(ctx context.Context, tx *sqlx.Tx, userID, tournamentID uuid.UUID) (map[uuid.UUID]bracket.GameGuess, error) {
	return getGuesses(ctx, tx, userID, tournamentID)
}

func getGuesses(ctx context.Context, q sqlx.QueryerContext, userID, tournamentID uuid.UUID) (map[uuid.UUID]bracket.GameGuess, error) {
	var rows []bracket.GameGuess
	err := sqlx.SelectContext(ctx, q, &rows, `
		SELECT `+guessColumns+` FROM game_guesses g
		JOIN games ON games.id = g.game_id
		WHERE g.user_id = ? AND games.tournament_id = ?`, userID, tournamentID)
	if err != nil {
		return nil, err
	}

	guesses := make(map[uuid.UUID]bracket.GameGuess, len(rows))
	for _, r := range rows {
		guesses[r.GameID] = r
	}
	return guesses, nil
}

// GetTournamentGuesses loads every user's guesses for a tournament in one query, keyed by
// user id and then game id.
func (s *GuessStore) GetTournamentGuesses(ctx context.Context, tournamentID uuid.UUID) (map[uuid.UUID]map[uuid.UUID]bracket.GameGuess, error) {
	var rows []bracket.GameGuess
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+guessColumns+` FROM game_guesses g
		JOIN games ON games.id = g.game_id
		WHERE games.tournament_id = ?`, tournamentID)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID]map[uuid.UUID]bracket.GameGuess)
	for _, r := range rows {
		if byUser[r.UserID] == nil {
			byUser[r.UserID] = make(map[uuid.UUID]bracket.GameGuess)
		}
		byUser[r.UserID][r.GameID] = r
	}
	return byUser, nil
}

func (s *GuessStore) UpsertGuessTx(ctx context.Context, tx *sqlx.Tx, guess *bracket.GameGuess) error {
	_, err := tx.NamedExecContext(ctx, upsertGuessQuery, guess)
	return err
}

// UpdateGuessTeamsTx rewrites only the cached bracket identity of each guess.
func (s *GuessStore) UpdateGuessTeamsTx(ctx context.Context, tx *sqlx.Tx, guesses []bracket.GameGuess) error {
	for i := range guesses {
		if _, err := tx.NamedExecContext(ctx, updateGuessTeamsQuery, &guesses[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *GuessStore) GetHonorRollGuess(ctx context.Context, userID, tournamentID uuid.UUID) (*bracket.HonorRollGuess, error) {
	var guess bracket.HonorRollGuess
	err := s.db.GetContext(ctx, &guess, "SELECT * FROM honor_roll_guesses WHERE user_id = ? AND tournament_id = ?", userID, tournamentID)
	if err != nil {
		return nil, err
	}
	return &guess, nil
}

func (s *GuessStore) GetHonorRollGuesses(ctx context.Context, tournamentID uuid.UUID) (map[uuid.UUID]bracket.HonorRollGuess, error) {
	var rows []bracket.HonorRollGuess
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM honor_roll_guesses WHERE tournament_id = ?", tournamentID)
	if err != nil {
		return nil, err
	}

	guesses := make(map[uuid.UUID]bracket.HonorRollGuess, len(rows))
	for _, r := range rows {
		guesses[r.UserID] = r
	}
	return guesses, nil
}

func (s *GuessStore) UpsertHonorRollGuess(ctx context.Context, guess *bracket.HonorRollGuess) error {
	_, err := s.db.NamedExecContext(ctx, upsertHonorRollQuery, guess)
	return err
}

// GetParticipants returns the ids of users who guessed anything in the tournament.
func (s *GuessStore) GetParticipants(ctx context.Context, tournamentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids, `
		SELECT g.user_id FROM game_guesses g
		JOIN games ON games.id = g.game_id
		WHERE games.tournament_id = ?
		UNION
		SELECT user_id FROM honor_roll_guesses WHERE tournament_id = ?`, tournamentID, tournamentID)
	return ids, err
}
