// Package scoring awards points for a user's predictions against real outcomes.
package scoring

import (
	"cmp"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/resolver"
)

const (
	PointsExact   = 2
	PointsOutcome = 1
)

// ScoreGame returns 2 for an exact score, 1 for the right outcome and 0 otherwise.
//
// On playoff games the guess must be about the teams that actually played, otherwise it
// scores 0 however good the numbers are. When a playoff game went to penalties the guessed
// penalty winner has to match too. A playoff guess also earns 1 when it picked the side that
// went through with the wrong shape of score: a straight win for the side that won on
// penalties, or a draw with the right penalty winner for a side that won outright.
func ScoreGame(result bracket.GameResult, guess bracket.GameGuess, isPlayoff bool) int {
	if !result.IsFinal() || !guess.IsComplete() {
		return 0
	}
	if isPlayoff && (!bracket.SameTeam(guess.HomeTeamID, result.HomeTeamID) || !bracket.SameTeam(guess.AwayTeamID, result.AwayTeamID)) {
		return 0
	}

	rh, ra := *result.HomeScore, *result.AwayScore
	gh, ga := *guess.HomeScore, *guess.AwayScore

	actualTie := rh == ra
	guessTie := gh == ga
	penaltyWinner := result.PenaltyWinner()
	needsPenaltyWinner := isPlayoff && actualTie && penaltyWinner != bracket.SideNone
	penaltyMiss := needsPenaltyWinner && guess.PenaltyWinner() != penaltyWinner

	if rh == gh && ra == ga {
		if penaltyMiss {
			return 0
		}
		return PointsExact
	}

	if cmp.Compare(rh, ra) == cmp.Compare(gh, ga) {
		if penaltyMiss {
			return 0
		}
		return PointsOutcome
	}

	if !isPlayoff {
		return 0
	}
	if needsPenaltyWinner && !guessTie && resolver.WinningSide(guess) == penaltyWinner {
		return PointsOutcome
	}
	if !actualTie && guessTie && guess.PenaltyWinner() != bracket.SideNone && guess.PenaltyWinner() == resolver.WinningSide(result) {
		return PointsOutcome
	}
	return 0
}
