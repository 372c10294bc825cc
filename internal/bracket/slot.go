package bracket

import "github.com/google/uuid"

// Slot is one side of a fixture. A nil Slot means the team is not known yet.
// The concrete kinds are TeamSlot, TeamRule and GroupPositionRule.
type Slot interface {
	isSlot()
}

// TeamSlot is a slot that already holds a team.
type TeamSlot struct {
	TeamID uuid.UUID
}

// TeamRule takes the winner or loser of another game, referenced by game number.
type TeamRule struct {
	SourceGameNumber int
	WantsWinner      bool
}

// GroupPositionRule takes the team finishing at Position (1-based) in a group.
type GroupPositionRule struct {
	GroupID  uuid.UUID
	Position int
}

func (TeamSlot) isSlot()          {}
func (TeamRule) isSlot()          {}
func (GroupPositionRule) isSlot() {}

// Fixed returns the slot's team when it is a concrete TeamSlot.
func Fixed(s Slot) (uuid.UUID, bool) {
	if ts, ok := s.(TeamSlot); ok {
		return ts.TeamID, true
	}
	return uuid.Nil, false
}
