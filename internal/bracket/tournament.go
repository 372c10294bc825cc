package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentStarted   TournamentStatus = "started"
	TournamentCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID        uuid.UUID        `db:"id"`
	OwnerID   uuid.UUID        `db:"owner_id"`
	Name      string           `db:"name" json:"name"`
	Status    TournamentStatus `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
}

type Group struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"-"`
	Name         string    `db:"name" json:"name"`
}

type Team struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	TournamentID uuid.UUID  `db:"tournament_id" json:"-"`
	GroupID      *uuid.UUID `db:"group_id" json:"group_id,omitempty"`
	Name         string     `db:"name" json:"name"`
	ShortName    string     `db:"short_name" json:"short_name"`
}

// TeamIDsByGroup returns every group's roster in the order the teams were given.
func TeamIDsByGroup(teams []Team) map[uuid.UUID][]uuid.UUID {
	byGroup := make(map[uuid.UUID][]uuid.UUID)
	for _, t := range teams {
		if t.GroupID == nil {
			continue
		}
		byGroup[*t.GroupID] = append(byGroup[*t.GroupID], t.ID)
	}
	return byGroup
}
