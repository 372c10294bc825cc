package bracket

import "github.com/google/uuid"

type Stage string

const (
	StageGroup        Stage = "group"
	StageRoundOf32    Stage = "round_of_32"
	StageRoundOf16    Stage = "round_of_16"
	StageQuarterFinal Stage = "quarterfinal"
	StageSemiFinal    Stage = "semifinal"
	StageThirdPlace   Stage = "third_place"
	StageFinal        Stage = "final"
)

// StageForRound names a knockout round by how many games it holds.
func StageForRound(gamesInRound int) Stage {
	switch gamesInRound {
	case 1:
		return StageFinal
	case 2:
		return StageSemiFinal
	case 4:
		return StageQuarterFinal
	case 8:
		return StageRoundOf16
	default:
		return StageRoundOf32
	}
}

type Game struct {
	ID           uuid.UUID
	TournamentID uuid.UUID

	// GameNumber is the schedule-wide key that TeamRule slots point at.
	GameNumber  int
	Stage       Stage
	RoundNumber int
	GroupID     *uuid.UUID

	Home Slot
	Away Slot
}

func (g *Game) IsPlayoff() bool {
	return g.Stage != StageGroup
}

// Teams returns the concrete teams of a game whose slots are both fixed.
func (g *Game) Teams() (home, away uuid.UUID, ok bool) {
	home, homeOK := Fixed(g.Home)
	away, awayOK := Fixed(g.Away)
	return home, away, homeOK && awayOK
}

// ResolvedTeams is the derived occupant of each slot of one game. It is only valid for the
// results and guesses it was computed from.
type ResolvedTeams struct {
	HomeTeamID *uuid.UUID `json:"home_team_id"`
	AwayTeamID *uuid.UUID `json:"away_team_id"`
}

func (r ResolvedTeams) Complete() bool {
	return r.HomeTeamID != nil && r.AwayTeamID != nil
}

// SameTeam compares two optional team ids, treating two nils as equal.
func SameTeam(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
