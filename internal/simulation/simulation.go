// Package simulation fills in scores for games that have not been played yet, for previews.
package simulation

import (
	"math/rand/v2"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
)

// Strategy invents a result for an unplayed game between two known teams. It reports false
// when it declines to simulate the game.
type Strategy interface {
	Simulate(game bracket.Game, teams bracket.ResolvedTeams) (bracket.GameResult, bool)
}

// None never simulates anything.
type None struct{}

func (None) Simulate(bracket.Game, bracket.ResolvedTeams) (bracket.GameResult, bool) {
	return bracket.GameResult{}, false
}

// Random draws scores uniformly from 0 to maxGoals. The draw for a game depends only on the
// seed and the game number, so the same seed always yields the same tournament.
type Random struct {
	seed     uint64
	maxGoals int
}

func NewRandom(seed int64, maxGoals int) *Random {
	if maxGoals < 0 {
		maxGoals = 0
	}
	return &Random{seed: uint64(seed), maxGoals: maxGoals}
}

func (r *Random) Simulate(game bracket.Game, teams bracket.ResolvedTeams) (bracket.GameResult, bool) {
	if !teams.Complete() {
		return bracket.GameResult{}, false
	}

	rng := rand.New(rand.NewPCG(r.seed, uint64(game.GameNumber)))
	home := rng.IntN(r.maxGoals + 1)
	away := rng.IntN(r.maxGoals + 1)

	result := bracket.GameResult{
		GameID:     game.ID,
		HomeScore:  utils.Ptr(home),
		AwayScore:  utils.Ptr(away),
		HomeTeamID: teams.HomeTeamID,
		AwayTeamID: teams.AwayTeamID,
	}

	if game.IsPlayoff() && home == away {
		homePens, awayPens := shootout(rng)
		result.HomePenaltyScore = utils.Ptr(homePens)
		result.AwayPenaltyScore = utils.Ptr(awayPens)
		result.HomePenaltyWinner = homePens > awayPens
		result.AwayPenaltyWinner = awayPens > homePens
	}
	return result, true
}

// Five kicks each, then sudden death until someone misses.
func shootout(rng *rand.Rand) (int, int) {
	home, away := 0, 0
	for range 5 {
		home += rng.IntN(2)
		away += rng.IntN(2)
	}
	for home == away {
		home += rng.IntN(2)
		away += rng.IntN(2)
	}
	return home, away
}
