package scoring

import (
	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/google/uuid"
)

type Breakdown struct {
	GroupStage int `json:"group_stage"`
	Playoffs   int `json:"playoffs"`
	Qualifiers int `json:"qualifiers"`
	HonorRoll  int `json:"honor_roll"`

	ExactScores     int `json:"exact_scores"`
	CorrectOutcomes int `json:"correct_outcomes"`
}

func (b Breakdown) Total() int {
	return b.GroupStage + b.Playoffs + b.Qualifiers + b.HonorRoll
}

// ScoreGames sums ScoreGame over every game that has both a result and a guess.
func ScoreGames(games []bracket.Game, results map[uuid.UUID]bracket.GameResult, guesses map[uuid.UUID]bracket.GameGuess) Breakdown {
	var b Breakdown
	for _, g := range games {
		res, ok := results[g.ID]
		if !ok {
			continue
		}
		guess, ok := guesses[g.ID]
		if !ok {
			continue
		}

		points := ScoreGame(res, guess, g.IsPlayoff())
		switch points {
		case PointsExact:
			b.ExactScores++
		case PointsOutcome:
			b.CorrectOutcomes++
		}
		if g.IsPlayoff() {
			b.Playoffs += points
		} else {
			b.GroupStage += points
		}
	}
	return b
}
