package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/middleware"
	"github.com/AdamBeresnev/tourney-predictor/internal/resolver"
	"github.com/AdamBeresnev/tourney-predictor/internal/simulation"
	"github.com/AdamBeresnev/tourney-predictor/internal/standings"
	"github.com/AdamBeresnev/tourney-predictor/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentService struct {
	db         *sqlx.DB
	store      *store.TournamentStore
	headToHead bool
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, headToHead bool) *TournamentService {
	return &TournamentService{db: db, store: store, headToHead: headToHead}
}

// Overview is the real state of a tournament: tables, bracket and final placings.
type Overview struct {
	Tournament *bracket.Tournament
	Groups     []bracket.Group
	Teams      []bracket.Team
	Games      []bracket.Game
	Results    map[uuid.UUID]bracket.GameResult
	Standings  map[uuid.UUID][]bracket.TeamStats
	Bracket    map[uuid.UUID]bracket.ResolvedTeams
	HonorRoll  bracket.HonorRoll

	// Games whose result was made up by a simulation strategy
	Simulated map[uuid.UUID]bool
}

func (o *Overview) TeamsByID() map[uuid.UUID]bracket.Team {
	byID := make(map[uuid.UUID]bracket.Team, len(o.Teams))
	for _, t := range o.Teams {
		byID[t.ID] = t
	}
	return byID
}

type ResultInput struct {
	HomeScore *int
	AwayScore *int

	HomePenaltyScore *int
	AwayPenaltyScore *int
	PenaltyWinner    bracket.Side
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

// GetTournamentsForUser lists the tournaments owned by the user on the context.
func (s *TournamentService) GetTournamentsForUser(ctx context.Context) ([]bracket.Tournament, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}
	return s.store.GetTournamentsByOwner(ctx, userID)
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return tournament, nil
}

func (s *TournamentService) GetOverview(ctx context.Context, id uuid.UUID) (*Overview, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	groups, err := s.store.GetGroups(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	teams, err := s.store.GetTeams(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	games, err := s.store.GetGames(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	results, err := s.store.GetResults(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	conduct, err := s.store.GetConductScores(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get conduct scores: %w", err)
	}

	tables := standings.ForGroups(teams, games, results, conduct, s.headToHead)
	r := resolver.New(games, results, nil, tables)
	resolved := r.ResolveAll()
	logIssues(id, r.Issues())

	return &Overview{
		Tournament: tournament,
		Groups:     groups,
		Teams:      teams,
		Games:      games,
		Results:    results,
		Standings:  tables,
		Bracket:    resolved,
		HonorRoll:  resolver.HonorRollFrom(games, results, resolved),
		Simulated:  map[uuid.UUID]bool{},
	}, nil
}

// RecordResult stores the real outcome of a game. Only the tournament owner may do this. The
// teams that played are stamped on the result and the standings snapshot is refreshed.
func (s *TournamentService) RecordResult(ctx context.Context, userID, gameID uuid.UUID, input ResultInput) (*bracket.GameResult, error) {
	if input.HomeScore == nil || input.AwayScore == nil || *input.HomeScore < 0 || *input.AwayScore < 0 {
		return nil, ErrInvalidScore
	}
	if (input.HomePenaltyScore != nil && *input.HomePenaltyScore < 0) || (input.AwayPenaltyScore != nil && *input.AwayPenaltyScore < 0) {
		return nil, ErrInvalidScore
	}

	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, notFound(err)
	}
	tournament, err := s.store.GetTournament(ctx, game.TournamentID)
	if err != nil {
		return nil, notFound(err)
	}
	if tournament.OwnerID != userID {
		return nil, ErrForbidden
	}

	result := bracket.GameResult{
		GameID:    game.ID,
		HomeScore: input.HomeScore,
		AwayScore: input.AwayScore,
	}
	if game.IsPlayoff() && *input.HomeScore == *input.AwayScore {
		side := input.PenaltyWinner
		if side == bracket.SideNone && input.HomePenaltyScore != nil && input.AwayPenaltyScore != nil {
			switch {
			case *input.HomePenaltyScore > *input.AwayPenaltyScore:
				side = bracket.SideHome
			case *input.AwayPenaltyScore > *input.HomePenaltyScore:
				side = bracket.SideAway
			}
		}
		if side == bracket.SideNone {
			return nil, ErrPenaltyWinnerRequired
		}
		result.HomePenaltyScore = input.HomePenaltyScore
		result.AwayPenaltyScore = input.AwayPenaltyScore
		result.HomePenaltyWinner = side == bracket.SideHome
		result.AwayPenaltyWinner = side == bracket.SideAway
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	state, err := s.loadStateTx(ctx, tx, game.TournamentID)
	if err != nil {
		return nil, err
	}

	r := resolver.New(state.games, state.results, nil, state.standings(s.headToHead))
	teams := r.Resolve(*game)
	logIssues(game.TournamentID, r.Issues())
	if !teams.Complete() {
		return nil, ErrTeamsUndetermined
	}
	result.HomeTeamID = teams.HomeTeamID
	result.AwayTeamID = teams.AwayTeamID

	if err := s.store.UpsertResultTx(ctx, tx, &result); err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}
	state.results[game.ID] = result

	if err := s.restampDependentsTx(ctx, tx, game.TournamentID, state, game.GameNumber); err != nil {
		return nil, err
	}
	if err := s.refreshTx(ctx, tx, tournament, state); err != nil {
		return nil, err
	}

	slog.Info("result recorded", "tournament_id", game.TournamentID, "game_number", game.GameNumber,
		"home_score", *result.HomeScore, "away_score", *result.AwayScore)
	return &result, tx.Commit()
}

// SetConductScore records a team's disciplinary points, lower is better. Owner only.
func (s *TournamentService) SetConductScore(ctx context.Context, userID, teamID uuid.UUID, score int) error {
	if score < 0 {
		return ErrInvalidScore
	}

	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return notFound(err)
	}
	tournament, err := s.store.GetTournament(ctx, team.TournamentID)
	if err != nil {
		return notFound(err)
	}
	if tournament.OwnerID != userID {
		return ErrForbidden
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.SetConductScoreTx(ctx, tx, teamID, score); err != nil {
		return fmt.Errorf("failed to set conduct score: %w", err)
	}

	state, err := s.loadStateTx(ctx, tx, team.TournamentID)
	if err != nil {
		return err
	}
	if err := s.refreshTx(ctx, tx, tournament, state); err != nil {
		return err
	}

	return tx.Commit()
}

// Simulate previews the tournament with every unplayed game filled in by the strategy. Group
// games go first so the knockout slots can be resolved from the simulated tables. Nothing is
// written.
func (s *TournamentService) Simulate(ctx context.Context, id uuid.UUID, strategy simulation.Strategy) (*Overview, error) {
	overview, err := s.GetOverview(ctx, id)
	if err != nil {
		return nil, err
	}

	conduct, err := s.store.GetConductScores(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get conduct scores: %w", err)
	}

	results := maps.Clone(overview.Results)
	simulate := func(g bracket.Game, teams bracket.ResolvedTeams) {
		if res, ok := results[g.ID]; ok && res.IsFinal() {
			return
		}
		if res, ok := strategy.Simulate(g, teams); ok {
			results[g.ID] = res
			overview.Simulated[g.ID] = true
		}
	}

	for _, g := range overview.Games {
		if g.IsPlayoff() {
			continue
		}
		home, away, ok := g.Teams()
		if !ok {
			continue
		}
		simulate(g, bracket.ResolvedTeams{HomeTeamID: &home, AwayTeamID: &away})
	}

	tables := standings.ForGroups(overview.Teams, overview.Games, results, conduct, s.headToHead)
	for _, g := range overview.Games {
		if !g.IsPlayoff() {
			continue
		}
		// Each simulated result can change later slots, so every game gets a fresh pass
		simulate(g, resolver.ResolveTeams(g, results, nil, overview.Games, tables))
	}

	r := resolver.New(overview.Games, results, nil, tables)
	overview.Results = results
	overview.Standings = tables
	overview.Bracket = r.ResolveAll()
	overview.HonorRoll = resolver.HonorRollFrom(overview.Games, results, overview.Bracket)
	return overview, nil
}

type tournamentState struct {
	teams   []bracket.Team
	games   []bracket.Game
	results map[uuid.UUID]bracket.GameResult
	conduct map[uuid.UUID]int
}

func (st *tournamentState) standings(headToHead bool) map[uuid.UUID][]bracket.TeamStats {
	return standings.ForGroups(st.teams, st.games, st.results, st.conduct, headToHead)
}

func (s *TournamentService) loadStateTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (*tournamentState, error) {
	teams, err := s.store.GetTeamsTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	games, err := s.store.GetGamesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	results, err := s.store.GetResultsTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	conduct, err := s.store.GetConductScoresTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conduct scores: %w", err)
	}
	return &tournamentState{teams: teams, games: games, results: results, conduct: conduct}, nil
}

// restampDependentsTx re-resolves every recorded result downstream of gameNumber and rewrites
// the identities that changed, so a corrected result never leaves later games stamped with
// teams that no longer reach them.
func (s *TournamentService) restampDependentsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, state *tournamentState, gameNumber int) error {
	r := resolver.New(state.games, state.results, nil, state.standings(s.headToHead))
	for _, dep := range resolver.Dependents(state.games, gameNumber) {
		res, ok := state.results[dep.ID]
		if !ok || !res.IsFinal() {
			continue
		}
		teams := r.Resolve(dep)
		if bracket.SameTeam(res.HomeTeamID, teams.HomeTeamID) && bracket.SameTeam(res.AwayTeamID, teams.AwayTeamID) {
			continue
		}

		res.HomeTeamID, res.AwayTeamID = teams.HomeTeamID, teams.AwayTeamID
		if err := s.store.UpsertResultTx(ctx, tx, &res); err != nil {
			return fmt.Errorf("failed to restamp game %d: %w", dep.GameNumber, err)
		}
		state.results[dep.ID] = res
		slog.Info("result restamped", "tournament_id", tournamentID, "game_number", dep.GameNumber)
	}
	logIssues(tournamentID, r.Issues())
	return nil
}

// refreshTx rewrites the standings snapshot and moves the tournament status along.
func (s *TournamentService) refreshTx(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament, state *tournamentState) error {
	tables := state.standings(s.headToHead)

	groupIDs := slices.SortedFunc(maps.Keys(tables), func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	var snapshot []bracket.TeamStats
	for _, groupID := range groupIDs {
		snapshot = append(snapshot, tables[groupID]...)
	}
	if err := s.store.ReplaceStandingsTx(ctx, tx, tournament.ID, snapshot); err != nil {
		return fmt.Errorf("failed to save standings: %w", err)
	}

	status := bracket.TournamentDraft
	if len(state.results) > 0 {
		status = bracket.TournamentStarted
	}
	resolved := resolver.New(state.games, state.results, nil, tables).ResolveAll()
	if resolver.HonorRollFrom(state.games, state.results, resolved).Complete {
		status = bracket.TournamentCompleted
	}
	if status != tournament.Status {
		if err := s.store.UpdateTournamentStatusTx(ctx, tx, tournament.ID, status); err != nil {
			return fmt.Errorf("failed to update tournament status: %w", err)
		}
		tournament.Status = status
	}
	return nil
}

func logIssues(tournamentID uuid.UUID, issues []resolver.Issue) {
	for _, issue := range issues {
		slog.Warn("bracket rule could not be resolved",
			"tournament_id", tournamentID,
			"game_number", issue.GameNumber,
			"kind", issue.Kind,
			"reference", issue.Reference)
	}
}
