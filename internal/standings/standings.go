// Package standings ranks the teams of a group from its finished games.
package standings

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/google/uuid"
)

const (
	pointsForWin  = 3
	pointsForDraw = 1
)

// Compute ranks teamIDs by points, goal difference and goals scored, then by the
// head-to-head mini table of the exact tied subset when sortByHeadToHead is set, then by
// conduct score (lower first) and finally by team id. Only games played between two of the
// given teams with both scores recorded count. Index 0 of the result is first place.
func Compute(teamIDs []uuid.UUID, games []bracket.Game, results map[uuid.UUID]bracket.GameResult, conduct map[uuid.UUID]int, sortByHeadToHead bool) []bracket.TeamStats {
	ids := dedupe(teamIDs)
	table, scheduled := tally(ids, games, results)

	ranked := make([]bracket.TeamStats, 0, len(ids))
	for _, id := range ids {
		s := table[id]
		s.ConductScore = conduct[id]
		ranked = append(ranked, *s)
	}

	slices.SortFunc(ranked, compareOverall)

	for i := 0; i < len(ranked); {
		j := i + 1
		for j < len(ranked) && compareOverall(ranked[i], ranked[j]) == 0 {
			j++
		}
		if j-i > 1 {
			breakTie(ranked[i:j], games, results, sortByHeadToHead)
		}
		i = j
	}

	for i := range ranked {
		ranked[i].Position = i + 1
		n := scheduled[ranked[i].TeamID]
		ranked[i].IsComplete = n > 0 && ranked[i].GamesPlayed == n
	}

	return ranked
}

// GroupComplete reports whether every team of a computed group has played all its games.
func GroupComplete(stats []bracket.TeamStats) bool {
	if len(stats) == 0 {
		return false
	}
	for _, s := range stats {
		if !s.IsComplete {
			return false
		}
	}
	return true
}

// ForGroups computes the standings of every group that has at least one team.
func ForGroups(teams []bracket.Team, games []bracket.Game, results map[uuid.UUID]bracket.GameResult, conduct map[uuid.UUID]int, sortByHeadToHead bool) map[uuid.UUID][]bracket.TeamStats {
	out := make(map[uuid.UUID][]bracket.TeamStats)
	for groupID, roster := range bracket.TeamIDsByGroup(teams) {
		stats := Compute(roster, games, results, conduct, sortByHeadToHead)
		for i := range stats {
			stats[i].GroupID = groupID
		}
		out[groupID] = stats
	}
	return out
}

// ResultsFromGuesses turns a user's guesses into results so predicted standings can be
// computed with the same rules as real ones.
func ResultsFromGuesses(guesses map[uuid.UUID]bracket.GameGuess) map[uuid.UUID]bracket.GameResult {
	out := make(map[uuid.UUID]bracket.GameResult, len(guesses))
	for gameID, g := range guesses {
		out[gameID] = g.AsResult()
	}
	return out
}

func tally(ids []uuid.UUID, games []bracket.Game, results map[uuid.UUID]bracket.GameResult) (map[uuid.UUID]*bracket.TeamStats, map[uuid.UUID]int) {
	table := make(map[uuid.UUID]*bracket.TeamStats, len(ids))
	for _, id := range ids {
		table[id] = &bracket.TeamStats{TeamID: id}
	}
	scheduled := make(map[uuid.UUID]int, len(ids))

	for _, g := range games {
		home, away, ok := g.Teams()
		if !ok || home == away {
			continue
		}
		homeStats, awayStats := table[home], table[away]
		if homeStats == nil || awayStats == nil {
			continue
		}
		scheduled[home]++
		scheduled[away]++

		res, ok := results[g.ID]
		if !ok || !res.IsFinal() {
			continue
		}
		record(homeStats, *res.HomeScore, *res.AwayScore)
		record(awayStats, *res.AwayScore, *res.HomeScore)
	}

	return table, scheduled
}

func record(s *bracket.TeamStats, scored, conceded int) {
	s.GamesPlayed++
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst

	switch {
	case scored > conceded:
		s.Wins++
		s.Points += pointsForWin
	case scored == conceded:
		s.Draws++
		s.Points += pointsForDraw
	default:
		s.Losses++
	}
}

// Descending on points, goal difference and goals for.
func compareOverall(a, b bracket.TeamStats) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := cmp.Compare(b.GoalDifference, a.GoalDifference); c != 0 {
		return c
	}
	return cmp.Compare(b.GoalsFor, a.GoalsFor)
}

// breakTie orders teams level on the overall key. The head-to-head table only uses games
// between the tied teams themselves.
func breakTie(tied []bracket.TeamStats, games []bracket.Game, results map[uuid.UUID]bracket.GameResult, headToHead bool) {
	var mini map[uuid.UUID]*bracket.TeamStats
	if headToHead {
		ids := make([]uuid.UUID, len(tied))
		for i, s := range tied {
			ids[i] = s.TeamID
		}
		mini, _ = tally(ids, games, results)
	}

	slices.SortFunc(tied, func(a, b bracket.TeamStats) int {
		if mini != nil {
			ma, mb := mini[a.TeamID], mini[b.TeamID]
			if c := cmp.Compare(mb.Points, ma.Points); c != 0 {
				return c
			}
			if c := cmp.Compare(mb.GoalDifference, ma.GoalDifference); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(a.ConductScore, b.ConductScore); c != 0 {
			return c
		}
		return bytes.Compare(a.TeamID[:], b.TeamID[:])
	})
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// MergeResults overlays final real results on top of a user's guesses. The output is what a
// user's predicted tables are computed from.
func MergeResults(results map[uuid.UUID]bracket.GameResult, guesses map[uuid.UUID]bracket.GameGuess) map[uuid.UUID]bracket.GameResult {
	merged := ResultsFromGuesses(guesses)
	for gameID, res := range results {
		if res.IsFinal() {
			merged[gameID] = res
		}
	}
	return merged
}
