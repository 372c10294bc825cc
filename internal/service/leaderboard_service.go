package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/resolver"
	"github.com/AdamBeresnev/tourney-predictor/internal/scoring"
	"github.com/AdamBeresnev/tourney-predictor/internal/standings"
	"github.com/AdamBeresnev/tourney-predictor/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type LeaderboardService struct {
	tournaments *store.TournamentStore
	guesses     *store.GuessStore
	users       *store.UserStore

	headToHead      bool
	honorRollPoints scoring.HonorRollPoints
	concurrency     int
}

type LeaderboardOptions struct {
	HeadToHead      bool
	HonorRollPoints scoring.HonorRollPoints
	Concurrency     int
}

func NewLeaderboardService(tournaments *store.TournamentStore, guesses *store.GuessStore, users *store.UserStore, opts LeaderboardOptions) *LeaderboardService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &LeaderboardService{
		tournaments:     tournaments,
		guesses:         guesses,
		users:           users,
		headToHead:      opts.HeadToHead,
		honorRollPoints: opts.HonorRollPoints,
		concurrency:     opts.Concurrency,
	}
}

type LeaderboardEntry struct {
	Rank      int               `json:"rank"`
	UserID    uuid.UUID         `json:"user_id"`
	Username  string            `json:"username"`
	Total     int               `json:"total"`
	Breakdown scoring.Breakdown `json:"breakdown"`
}

// everything the scorer needs about the real tournament, shared read-only by all workers
type actualState struct {
	teams     []bracket.Team
	games     []bracket.Game
	results   map[uuid.UUID]bracket.GameResult
	conduct   map[uuid.UUID]int
	standings map[uuid.UUID][]bracket.TeamStats
	honorRoll bracket.HonorRoll
}

// GetLeaderboard scores every participant of a tournament. Participants are scored
// concurrently and ranked by total, then exact scores, then name. Users level on both
// numbers share a rank.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, tournamentID uuid.UUID) ([]LeaderboardEntry, error) {
	if _, err := s.tournaments.GetTournament(ctx, tournamentID); err != nil {
		return nil, notFound(err)
	}

	actual, err := s.loadActual(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	participants, err := s.guesses.GetParticipants(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	allGuesses, err := s.guesses.GetTournamentGuesses(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guesses: %w", err)
	}
	honorRollGuesses, err := s.guesses.GetHonorRollGuesses(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get honor roll guesses: %w", err)
	}
	profiles, err := s.users.ListUsersByIDs(ctx, participants)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	entries := make([]LeaderboardEntry, len(participants))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, userID := range participants {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b := s.score(actual, allGuesses[userID], honorRollGuesses[userID])
			entries[i] = LeaderboardEntry{
				UserID:    userID,
				Username:  profiles[userID].Username,
				Total:     b.Total(),
				Breakdown: b,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rank(entries)
	return entries, nil
}

// Score returns a single user's breakdown for the tournament.
func (s *LeaderboardService) Score(ctx context.Context, userID, tournamentID uuid.UUID) (scoring.Breakdown, error) {
	if _, err := s.tournaments.GetTournament(ctx, tournamentID); err != nil {
		return scoring.Breakdown{}, notFound(err)
	}
	actual, err := s.loadActual(ctx, tournamentID)
	if err != nil {
		return scoring.Breakdown{}, err
	}
	guesses, err := s.guesses.GetGuesses(ctx, userID, tournamentID)
	if err != nil {
		return scoring.Breakdown{}, fmt.Errorf("failed to get guesses: %w", err)
	}
	honorRollGuesses, err := s.guesses.GetHonorRollGuesses(ctx, tournamentID)
	if err != nil {
		return scoring.Breakdown{}, fmt.Errorf("failed to get honor roll guesses: %w", err)
	}
	return s.score(actual, guesses, honorRollGuesses[userID]), nil
}

func (s *LeaderboardService) loadActual(ctx context.Context, tournamentID uuid.UUID) (*actualState, error) {
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

	tables := standings.ForGroups(teams, games, results, conduct, s.headToHead)
	r := resolver.New(games, results, nil, tables)
	resolved := r.ResolveAll()
	logIssues(tournamentID, r.Issues())

	return &actualState{
		teams:     teams,
		games:     games,
		results:   results,
		conduct:   conduct,
		standings: tables,
		honorRoll: resolver.HonorRollFrom(games, results, resolved),
	}, nil
}

func (s *LeaderboardService) score(actual *actualState, guesses map[uuid.UUID]bracket.GameGuess, honorRollGuess bracket.HonorRollGuess) scoring.Breakdown {
	b := scoring.ScoreGames(actual.games, actual.results, guesses)

	// Qualifier picks come from the user's own tables, real results are not mixed in. A table
	// the user did not fully predict is no pick at all.
	predicted := standings.ForGroups(actual.teams, actual.games, standings.ResultsFromGuesses(guesses), actual.conduct, s.headToHead)
	for groupID, table := range actual.standings {
		if !standings.GroupComplete(predicted[groupID]) {
			continue
		}
		b.Qualifiers += scoring.ScoreQualifiers(table, predicted[groupID])
	}

	b.HonorRoll = scoring.ScoreHonorRoll(actual.honorRoll, honorRollGuess, s.honorRollPoints)
	return b
}

func rank(entries []LeaderboardEntry) {
	slices.SortFunc(entries, func(a, b LeaderboardEntry) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Breakdown.ExactScores, a.Breakdown.ExactScores); c != 0 {
			return c
		}
		return cmp.Compare(a.Username, b.Username)
	})

	for i := range entries {
		if i > 0 && entries[i].Total == entries[i-1].Total && entries[i].Breakdown.ExactScores == entries[i-1].Breakdown.ExactScores {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}
