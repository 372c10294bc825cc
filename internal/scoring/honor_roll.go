package scoring

import "github.com/AdamBeresnev/tourney-predictor/internal/bracket"

type HonorRollPoints struct {
	Champion   int
	RunnerUp   int
	ThirdPlace int
}

var DefaultHonorRollPoints = HonorRollPoints{Champion: 5, RunnerUp: 3, ThirdPlace: 1}

// ScoreHonorRoll compares a user's champion, runner-up and third-place picks with the final
// placings once they are all known.
func ScoreHonorRoll(actual bracket.HonorRoll, guess bracket.HonorRollGuess, points HonorRollPoints) int {
	if !actual.Complete {
		return 0
	}

	total := 0
	if guess.Champion != nil && bracket.SameTeam(guess.Champion, actual.Champion) {
		total += points.Champion
	}
	if guess.RunnerUp != nil && bracket.SameTeam(guess.RunnerUp, actual.RunnerUp) {
		total += points.RunnerUp
	}
	if guess.ThirdPlace != nil && bracket.SameTeam(guess.ThirdPlace, actual.ThirdPlace) {
		total += points.ThirdPlace
	}
	return total
}
