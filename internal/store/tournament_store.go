package store

import (
	"context"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	resultColumns = `game_id, home_score, away_score, home_penalty_score, away_penalty_score,
		home_penalty_winner, away_penalty_winner, home_team_id, away_team_id`
	statsColumns = `team_id, group_id, position, games_played, points, wins, draws, losses,
		goals_for, goals_against, goal_difference, conduct_score, is_complete`

	upsertResultQuery = `
		INSERT INTO game_results (` + resultColumns + `)
		VALUES (:game_id, :home_score, :away_score, :home_penalty_score, :away_penalty_score,
			:home_penalty_winner, :away_penalty_winner, :home_team_id, :away_team_id)
		ON CONFLICT (game_id) DO UPDATE SET
			home_score = excluded.home_score,
			away_score = excluded.away_score,
			home_penalty_score = excluded.home_penalty_score,
			away_penalty_score = excluded.away_penalty_score,
			home_penalty_winner = excluded.home_penalty_winner,
			away_penalty_winner = excluded.away_penalty_winner,
			home_team_id = excluded.home_team_id,
			away_team_id = excluded.away_team_id,
			updated_at = CURRENT_TIMESTAMP
	`
	setConductQuery = `
		INSERT INTO team_conduct (team_id, conduct_score) VALUES (?, ?)
		ON CONFLICT (team_id) DO UPDATE SET conduct_score = excluded.conduct_score
	`
)

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, owner_id, name, status)
        VALUES (:id, :owner_id, :name, :status)`, tournament)
	return err
}

func (s *TournamentStore) CreateGroups(ctx context.Context, tx *sqlx.Tx, groups []bracket.Group) error {
	if len(groups) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournament_groups (id, tournament_id, name)
		VALUES (:id, :tournament_id, :name)`, groups)
	return err
}

func (s *TournamentStore) CreateTeams(ctx context.Context, tx *sqlx.Tx, teams []bracket.Team) error {
	if len(teams) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO teams (id, tournament_id, group_id, name, short_name)
		VALUES (:id, :tournament_id, :group_id, :name, :short_name)`, teams)
	return err
}

func (s *TournamentStore) CreateGames(ctx context.Context, tx *sqlx.Tx, games []bracket.Game) error {
	if len(games) == 0 {
		return nil
	}
	rows := make([]gameRow, len(games))
	for i, g := range games {
		rows[i] = newGameRow(g)
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO games (`+gameColumns+`)
		VALUES (:id, :tournament_id, :game_number, :stage, :round_number, :group_id,
			:home_team_id, :home_source_game, :home_wants_winner, :home_group_id, :home_group_position,
			:away_team_id, :away_source_game, :away_wants_winner, :away_group_id, :away_group_position)`, rows)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments ORDER BY created_at DESC, name ASC")
	return tournaments, err
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments WHERE owner_id = ? ORDER BY created_at DESC", ownerID)
	return tournaments, err
}

func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *TournamentStore) GetGroups(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Group, error) {
	var groups []bracket.Group
	err := s.db.SelectContext(ctx, &groups, "SELECT * FROM tournament_groups WHERE tournament_id = ? ORDER BY name ASC", tournamentID)
	return groups, err
}

func (s *TournamentStore) GetTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Team, error) {
	return getTeams(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetTeamsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Team, error) {
	return getTeams(ctx, tx, tournamentID)
}

func getTeams(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := sqlx.SelectContext(ctx, q, &teams, "SELECT * FROM teams WHERE tournament_id = ? ORDER BY rowid ASC", tournamentID)
	return teams, err
}

func (s *TournamentStore) GetTeam(ctx context.Context, id uuid.UUID) (*bracket.Team, error) {
	var team bracket.Team
	if err := s.db.GetContext(ctx, &team, "SELECT * FROM teams WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TournamentStore) GetGames(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Game, error) {
	return getGames(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetGamesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Game, error) {
	return getGames(ctx, tx, tournamentID)
}

func getGames(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Game, error) {
	var rows []gameRow
	err := sqlx.SelectContext(ctx, q, &rows, "SELECT "+gameColumns+" FROM games WHERE tournament_id = ? ORDER BY game_number ASC", tournamentID)
	if err != nil {
		return nil, err
	}

	games := make([]bracket.Game, len(rows))
	for i, r := range rows {
		games[i] = r.game()
	}
	return games, nil
}

func (s *TournamentStore) GetGame(ctx context.Context, id uuid.UUID) (*bracket.Game, error) {
	return getGame(ctx, s.db, id)
}

func (s *TournamentStore) GetGameTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Game, error) {
	return getGame(ctx, tx, id)
}

func getGame(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Game, error) {
	var row gameRow
	if err := sqlx.GetContext(ctx, q, &row, "SELECT "+gameColumns+" FROM games WHERE id = ?", id); err != nil {
		return nil, err
	}
	game := row.game()
	return &game, nil
}

// GetResults returns the tournament's recorded results keyed by game id.
func (s *TournamentStore) GetResults(ctx context.Context, tournamentID uuid.UUID) (map[uuid.UUID]bracket.GameResult, error) {
	return getResults(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetResultsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (map[uuid.UUID]bracket.GameResult, error) {
	return getResults(ctx, tx, tournamentID)
}

func getResults(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) (map[uuid.UUID]bracket.GameResult, error) {
	var rows []bracket.GameResult
	err := sqlx.SelectContext(ctx, q, &rows, `
		SELECT `+resultColumns+` FROM game_results
		WHERE game_id IN (SELECT id FROM games WHERE tournament_id = ?)`, tournamentID)
	if err != nil {
		return nil, err
	}

	results := make(map[uuid.UUID]bracket.GameResult, len(rows))
	for _, r := range rows {
		results[r.GameID] = r
	}
	return results, nil
}

func (s *TournamentStore) UpsertResultTx(ctx context.Context, tx *sqlx.Tx, result *bracket.GameResult) error {
	_, err := tx.NamedExecContext(ctx, upsertResultQuery, result)
	return err
}

// GetConductScores returns the conduct score of every team that has one. Teams without a
// row score 0.
func (s *TournamentStore) GetConductScores(ctx context.Context, tournamentID uuid.UUID) (map[uuid.UUID]int, error) {
	return getConductScores(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetConductScoresTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (map[uuid.UUID]int, error) {
	return getConductScores(ctx, tx, tournamentID)
}

func getConductScores(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		TeamID uuid.UUID `db:"team_id"`
		Score  int       `db:"conduct_score"`
	}
	err := sqlx.SelectContext(ctx, q, &rows, `
		SELECT c.team_id, c.conduct_score FROM team_conduct c
		JOIN teams t ON t.id = c.team_id
		WHERE t.tournament_id = ?`, tournamentID)
	if err != nil {
		return nil, err
	}

	conduct := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		conduct[r.TeamID] = r.Score
	}
	return conduct, nil
}

func (s *TournamentStore) SetConductScoreTx(ctx context.Context, tx *sqlx.Tx, teamID uuid.UUID, score int) error {
	_, err := tx.ExecContext(ctx, setConductQuery, teamID, score)
	return err
}

// ReplaceStandingsTx swaps the stored standings snapshot of a tournament for a new one.
func (s *TournamentStore) ReplaceStandingsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, stats []bracket.TeamStats) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM team_stats WHERE team_id IN (SELECT id FROM teams WHERE tournament_id = ?)", tournamentID)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return nil
	}
	_, err = tx.NamedExecContext(ctx, `INSERT INTO team_stats (`+statsColumns+`)
		VALUES (:team_id, :group_id, :position, :games_played, :points, :wins, :draws, :losses,
			:goals_for, :goals_against, :goal_difference, :conduct_score, :is_complete)`, stats)
	return err
}

// GetStandings returns the last stored snapshot ordered by group and position.
func (s *TournamentStore) GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]bracket.TeamStats, error) {
	var stats []bracket.TeamStats
	err := s.db.SelectContext(ctx, &stats, `
		SELECT s.* FROM team_stats s
		JOIN tournament_groups g ON g.id = s.group_id
		WHERE g.tournament_id = ?
		ORDER BY g.name ASC, s.position ASC`, tournamentID)
	return stats, err
}
