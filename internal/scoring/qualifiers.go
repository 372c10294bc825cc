package scoring

import (
	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/standings"
	"github.com/google/uuid"
)

const qualifierSlots = 2

// ScoreQualifiers gives a point for each of the user's predicted top two that really
// finished in the top two, regardless of order. Nothing is awarded before the group is
// complete.
func ScoreQualifiers(actual, guessed []bracket.TeamStats) int {
	if !standings.GroupComplete(actual) || len(actual) < qualifierSlots {
		return 0
	}

	qualified := make(map[uuid.UUID]bool, qualifierSlots)
	for _, s := range actual[:qualifierSlots] {
		qualified[s.TeamID] = true
	}

	points := 0
	for i := 0; i < qualifierSlots && i < len(guessed); i++ {
		if qualified[guessed[i].TeamID] {
			points++
		}
	}
	return points
}
