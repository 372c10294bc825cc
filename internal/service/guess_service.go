package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/resolver"
	"github.com/AdamBeresnev/tourney-predictor/internal/standings"
	"github.com/AdamBeresnev/tourney-predictor/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type GuessService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	guesses     *store.GuessStore
	headToHead  bool
}

func NewGuessService(db *sqlx.DB, tournaments *store.TournamentStore, guesses *store.GuessStore, headToHead bool) *GuessService {
	return &GuessService{db: db, tournaments: tournaments, guesses: guesses, headToHead: headToHead}
}

type GuessInput struct {
	HomeScore     *int
	AwayScore     *int
	PenaltyWinner bracket.Side
}

type HonorRollInput struct {
	Champion   *uuid.UUID
	RunnerUp   *uuid.UUID
	ThirdPlace *uuid.UUID
}

// PredictedBracket is the tournament as one user sees it: real results where they exist and
// the user's guesses everywhere else.
type PredictedBracket struct {
	Tournament *bracket.Tournament
	Groups     []bracket.Group
	Teams      []bracket.Team
	Games      []bracket.Game
	Results    map[uuid.UUID]bracket.GameResult
	Guesses    map[uuid.UUID]bracket.GameGuess
	Standings  map[uuid.UUID][]bracket.TeamStats
	Bracket    map[uuid.UUID]bracket.ResolvedTeams

	// HonorRoll is what the user's bracket implies, HonorRollGuess is what they picked
	HonorRoll      bracket.HonorRoll
	HonorRollGuess *bracket.HonorRollGuess
}

// predictedStandings ranks the groups on real results first, filling the gaps with guesses.
func (s *GuessService) predictedStandings(teams []bracket.Team, games []bracket.Game, results map[uuid.UUID]bracket.GameResult, guesses map[uuid.UUID]bracket.GameGuess, conduct map[uuid.UUID]int) map[uuid.UUID][]bracket.TeamStats {
	return standings.ForGroups(teams, games, standings.MergeResults(results, guesses), conduct, s.headToHead)
}

// SaveGuess stores a user's guess for a game that has not been decided yet. On playoff games
// the guess is tied to the teams the user's own bracket puts there. Guesses further down the
// bracket whose teams change as a consequence are rewritten in the same transaction.
func (s *GuessService) SaveGuess(ctx context.Context, userID, gameID uuid.UUID, input GuessInput) (*bracket.GameGuess, error) {
	if input.HomeScore == nil || input.AwayScore == nil || *input.HomeScore < 0 || *input.AwayScore < 0 {
		return nil, ErrInvalidScore
	}

	game, err := s.tournaments.GetGame(ctx, gameID)
	if err != nil {
		return nil, notFound(err)
	}

	penaltyWinner := bracket.SideNone
	if game.IsPlayoff() && *input.HomeScore == *input.AwayScore {
		if input.PenaltyWinner == bracket.SideNone {
			return nil, ErrPenaltyWinnerRequired
		}
		penaltyWinner = input.PenaltyWinner
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	results, err := s.tournaments.GetResultsTx(ctx, tx, game.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	if res, ok := results[game.ID]; ok && res.IsFinal() {
		return nil, ErrGameFinished
	}

	teams, err := s.tournaments.GetTeamsTx(ctx, tx, game.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	games, err := s.tournaments.GetGamesTx(ctx, tx, game.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	conduct, err := s.tournaments.GetConductScoresTx(ctx, tx, game.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conduct scores: %w", err)
	}
	guesses, err := s.guesses.GetGuessesTx(ctx, tx, userID, game.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guesses: %w", err)
	}

	guess, ok := guesses[game.ID]
	if !ok {
		guess = bracket.GameGuess{ID: uuid.New(), UserID: userID, GameID: game.ID}
	}
	guess.HomeScore = input.HomeScore
	guess.AwayScore = input.AwayScore
	guess.HomePenaltyWinner = penaltyWinner == bracket.SideHome
	guess.AwayPenaltyWinner = penaltyWinner == bracket.SideAway
	guess.HomeTeamID, guess.AwayTeamID = nil, nil

	if game.IsPlayoff() {
		tables := s.predictedStandings(teams, games, results, guesses, conduct)
		r := resolver.New(games, results, guesses, tables)
		resolved := r.Resolve(*game)
		logIssues(game.TournamentID, r.Issues())
		guess.HomeTeamID = resolved.HomeTeamID
		guess.AwayTeamID = resolved.AwayTeamID
	}
	guesses[game.ID] = guess

	if err := s.guesses.UpsertGuessTx(ctx, tx, &guess); err != nil {
		return nil, fmt.Errorf("failed to save guess: %w", err)
	}

	tables := s.predictedStandings(teams, games, results, guesses, conduct)
	changed := resolver.Reconcile(games, results, guesses, tables, game.GameNumber)
	if err := s.guesses.UpdateGuessTeamsTx(ctx, tx, changed); err != nil {
		return nil, fmt.Errorf("failed to update dependent guesses: %w", err)
	}
	if len(changed) > 0 {
		slog.Info("dependent guesses re-pointed", "user_id", userID, "game_number", game.GameNumber, "count", len(changed))
	}

	return &guess, tx.Commit()
}

func (s *GuessService) GetPredictedBracket(ctx context.Context, userID, tournamentID uuid.UUID) (*PredictedBracket, error) {
	tournament, err := s.tournaments.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, notFound(err)
	}
	groups, err := s.tournaments.GetGroups(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	teams, err := s.tournaments.GetTeams(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	games, err := s.tournaments.GetGames(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	results, err := s.tournaments.GetResults(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	conduct, err := s.tournaments.GetConductScores(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conduct scores: %w", err)
	}
	guesses, err := s.guesses.GetGuesses(ctx, userID, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guesses: %w", err)
	}

	honorRollGuess, err := s.guesses.GetHonorRollGuess(ctx, userID, tournamentID)
	if err != nil {
		if !errors.Is(notFound(err), ErrNotFound) {
			return nil, fmt.Errorf("failed to get honor roll guess: %w", err)
		}
		honorRollGuess = nil
	}

	tables := s.predictedStandings(teams, games, results, guesses, conduct)
	r := resolver.New(games, results, guesses, tables)
	resolved := r.ResolveAll()
	logIssues(tournamentID, r.Issues())

	return &PredictedBracket{
		Tournament:     tournament,
		Groups:         groups,
		Teams:          teams,
		Games:          games,
		Results:        results,
		Guesses:        guesses,
		Standings:      tables,
		Bracket:        resolved,
		HonorRoll:      resolver.HonorRollFrom(games, standings.MergeResults(results, guesses), resolved),
		HonorRollGuess: honorRollGuess,
	}, nil
}

// SaveHonorRollGuess stores the user's champion, runner-up and third-place picks. Picks are
// locked once the final has been played.
func (s *GuessService) SaveHonorRollGuess(ctx context.Context, userID, tournamentID uuid.UUID, input HonorRollInput) (*bracket.HonorRollGuess, error) {
	if _, err := s.tournaments.GetTournament(ctx, tournamentID); err != nil {
		return nil, notFound(err)
	}
	teams, err := s.tournaments.GetTeams(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	games, err := s.tournaments.GetGames(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	results, err := s.tournaments.GetResults(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}

	for _, g := range games {
		if g.Stage == bracket.StageFinal {
			if res, ok := results[g.ID]; ok && res.IsFinal() {
				return nil, ErrGameFinished
			}
		}
	}

	known := make(map[uuid.UUID]bool, len(teams))
	for _, t := range teams {
		known[t.ID] = true
	}
	picked := make(map[uuid.UUID]bool, 3)
	for _, pick := range []*uuid.UUID{input.Champion, input.RunnerUp, input.ThirdPlace} {
		if pick == nil {
			continue
		}
		if !known[*pick] || picked[*pick] {
			return nil, ErrInvalidHonorRoll
		}
		picked[*pick] = true
	}

	guess := bracket.HonorRollGuess{
		UserID:       userID,
		TournamentID: tournamentID,
		Champion:     input.Champion,
		RunnerUp:     input.RunnerUp,
		ThirdPlace:   input.ThirdPlace,
	}
	if err := s.guesses.UpsertHonorRollGuess(ctx, &guess); err != nil {
		return nil, fmt.Errorf("failed to save honor roll guess: %w", err)
	}
	return &guess, nil
}
