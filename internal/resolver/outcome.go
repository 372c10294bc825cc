package resolver

import (
	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/google/uuid"
)

// WinningSide derives who went through. A level score is decided by the penalty winner and
// stays undecided without one. Incomplete scores are always undecided.
func WinningSide(line bracket.Scoreline) bracket.Side {
	if line == nil {
		return bracket.SideNone
	}
	home, away := line.Scores()
	if home == nil || away == nil {
		return bracket.SideNone
	}
	switch {
	case *home > *away:
		return bracket.SideHome
	case *home < *away:
		return bracket.SideAway
	default:
		return line.PenaltyWinner()
	}
}

// Winner maps the winning side onto the given team identities.
func Winner(line bracket.Scoreline, home, away *uuid.UUID) *uuid.UUID {
	switch WinningSide(line) {
	case bracket.SideHome:
		return home
	case bracket.SideAway:
		return away
	default:
		return nil
	}
}

func Loser(line bracket.Scoreline, home, away *uuid.UUID) *uuid.UUID {
	switch WinningSide(line) {
	case bracket.SideHome:
		return away
	case bracket.SideAway:
		return home
	default:
		return nil
	}
}
