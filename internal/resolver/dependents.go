package resolver

import (
	"slices"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/google/uuid"
)

// Dependents returns every game that takes a team, directly or transitively, from the game
// numbered gameNumber, in game-number order. A group game feeds every game holding a
// position rule on its group.
func Dependents(allGames []bracket.Game, gameNumber int) []bracket.Game {
	byRule := make(map[int][]bracket.Game)
	byGroup := make(map[uuid.UUID][]bracket.Game)
	var start *bracket.Game
	for i, g := range allGames {
		if g.GameNumber == gameNumber {
			start = &allGames[i]
		}
		for _, s := range []bracket.Slot{g.Home, g.Away} {
			switch s := s.(type) {
			case bracket.TeamRule:
				byRule[s.SourceGameNumber] = append(byRule[s.SourceGameNumber], g)
			case bracket.GroupPositionRule:
				byGroup[s.GroupID] = append(byGroup[s.GroupID], g)
			}
		}
	}
	if start == nil {
		return nil
	}

	seen := map[int]bool{gameNumber: true}
	var out []bracket.Game
	queue := slices.Clone(byRule[gameNumber])
	if start.GroupID != nil && start.Stage == bracket.StageGroup {
		queue = append(queue, byGroup[*start.GroupID]...)
	}
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		if seen[g.GameNumber] {
			continue
		}
		seen[g.GameNumber] = true
		out = append(out, g)
		queue = append(queue, byRule[g.GameNumber]...)
	}

	slices.SortFunc(out, func(a, b bracket.Game) int {
		return a.GameNumber - b.GameNumber
	})
	return out
}

// Reconcile re-resolves a user's bracket after the guess on changedGameNumber was edited
// and returns copies of the downstream guesses whose stored identity went stale, with the
// identity replaced. The guesses map is not modified, persisting the copies is up to the
// caller.
func Reconcile(allGames []bracket.Game, results map[uuid.UUID]bracket.GameResult, guesses map[uuid.UUID]bracket.GameGuess, groupStandings map[uuid.UUID][]bracket.TeamStats, changedGameNumber int) []bracket.GameGuess {
	r := New(allGames, results, guesses, groupStandings)

	var changed []bracket.GameGuess
	for _, g := range Dependents(allGames, changedGameNumber) {
		guess, ok := guesses[g.ID]
		if !ok {
			continue
		}
		teams := r.Resolve(g)
		if bracket.SameTeam(guess.HomeTeamID, teams.HomeTeamID) && bracket.SameTeam(guess.AwayTeamID, teams.AwayTeamID) {
			continue
		}
		guess.HomeTeamID = teams.HomeTeamID
		guess.AwayTeamID = teams.AwayTeamID
		changed = append(changed, guess)
	}
	return changed
}
