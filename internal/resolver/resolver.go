// Package resolver works out which teams occupy knockout slots by following winner, loser
// and group-position rules back through the schedule.
package resolver

import (
	"slices"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/standings"
	"github.com/google/uuid"
)

// Knockout trees are at most a handful of rounds deep, anything past this is malformed data.
const maxDepth = 16

type IssueKind string

const (
	IssueUnknownGameNumber IssueKind = "unknown_game_number"
	IssueDepthExceeded     IssueKind = "depth_exceeded"
	IssueInvalidPosition   IssueKind = "invalid_group_position"
)

// Issue is a reference the resolver could not follow. The slot involved is left unresolved.
type Issue struct {
	GameNumber int
	Kind       IssueKind
	Reference  int
}

// Resolver is a single resolution pass. Results and guesses are read-only, and every game
// is resolved at most once per pass. Build a new Resolver whenever the inputs change.
type Resolver struct {
	games     []bracket.Game
	byNumber  map[int]bracket.Game
	results   map[uuid.UUID]bracket.GameResult
	guesses   map[uuid.UUID]bracket.GameGuess
	standings map[uuid.UUID][]bracket.TeamStats

	memo   map[int]bracket.ResolvedTeams
	issues []Issue
}

// New prepares a pass over allGames. Either results or guesses may be nil. For any source
// game a final result wins over a guess.
func New(allGames []bracket.Game, results map[uuid.UUID]bracket.GameResult, guesses map[uuid.UUID]bracket.GameGuess, groupStandings map[uuid.UUID][]bracket.TeamStats) *Resolver {
	byNumber := make(map[int]bracket.Game, len(allGames))
	for _, g := range allGames {
		byNumber[g.GameNumber] = g
	}
	games := slices.Clone(allGames)
	slices.SortStableFunc(games, func(a, b bracket.Game) int {
		return a.GameNumber - b.GameNumber
	})
	return &Resolver{
		games:     games,
		byNumber:  byNumber,
		results:   results,
		guesses:   guesses,
		standings: groupStandings,
		memo:      make(map[int]bracket.ResolvedTeams),
	}
}

// ResolveTeams resolves a single game in a fresh pass.
func ResolveTeams(game bracket.Game, results map[uuid.UUID]bracket.GameResult, guesses map[uuid.UUID]bracket.GameGuess, allGames []bracket.Game, groupStandings map[uuid.UUID][]bracket.TeamStats) bracket.ResolvedTeams {
	return New(allGames, results, guesses, groupStandings).Resolve(game)
}

func (r *Resolver) Resolve(game bracket.Game) bracket.ResolvedTeams {
	return r.resolve(game, 0)
}

// ResolveAll resolves every playoff game in game-number order, keyed by game id.
func (r *Resolver) ResolveAll() map[uuid.UUID]bracket.ResolvedTeams {
	out := make(map[uuid.UUID]bracket.ResolvedTeams)
	for _, g := range r.games {
		// a duplicated number resolves as the game New kept for it
		if r.byNumber[g.GameNumber].ID != g.ID {
			continue
		}
		if g.IsPlayoff() {
			out[g.ID] = r.Resolve(g)
		}
	}
	return out
}

// Issues lists every reference that could not be followed, ordered by game number.
func (r *Resolver) Issues() []Issue {
	out := slices.Clone(r.issues)
	slices.SortStableFunc(out, func(a, b Issue) int {
		return a.GameNumber - b.GameNumber
	})
	return out
}

func (r *Resolver) resolve(game bracket.Game, depth int) bracket.ResolvedTeams {
	if cached, ok := r.memo[game.GameNumber]; ok {
		return cached
	}
	if depth > maxDepth {
		r.issues = append(r.issues, Issue{GameNumber: game.GameNumber, Kind: IssueDepthExceeded, Reference: depth})
		return bracket.ResolvedTeams{}
	}

	teams := bracket.ResolvedTeams{
		HomeTeamID: r.slot(game, game.Home, depth),
		AwayTeamID: r.slot(game, game.Away, depth),
	}
	r.memo[game.GameNumber] = teams
	return teams
}

func (r *Resolver) slot(game bracket.Game, s bracket.Slot, depth int) *uuid.UUID {
	switch s := s.(type) {
	case nil:
		return nil
	case bracket.TeamSlot:
		id := s.TeamID
		return &id
	case bracket.GroupPositionRule:
		table, ok := r.standings[s.GroupID]
		if !ok || !standings.GroupComplete(table) {
			return nil
		}
		if s.Position < 1 || s.Position > len(table) {
			r.issues = append(r.issues, Issue{GameNumber: game.GameNumber, Kind: IssueInvalidPosition, Reference: s.Position})
			return nil
		}
		id := table[s.Position-1].TeamID
		return &id
	case bracket.TeamRule:
		source, ok := r.byNumber[s.SourceGameNumber]
		if !ok {
			r.issues = append(r.issues, Issue{GameNumber: game.GameNumber, Kind: IssueUnknownGameNumber, Reference: s.SourceGameNumber})
			return nil
		}
		// Winner needs the source's team names, not just the winning side
		teams := r.resolve(source, depth+1)
		line := r.scoreline(source.ID)
		if line == nil {
			return nil
		}
		if s.WantsWinner {
			return Winner(line, teams.HomeTeamID, teams.AwayTeamID)
		}
		return Loser(line, teams.HomeTeamID, teams.AwayTeamID)
	default:
		return nil
	}
}

func (r *Resolver) scoreline(gameID uuid.UUID) bracket.Scoreline {
	if res, ok := r.results[gameID]; ok && res.IsFinal() {
		return res
	}
	if g, ok := r.guesses[gameID]; ok && g.IsComplete() {
		return g
	}
	return nil
}
