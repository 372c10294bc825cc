package bracket

import "github.com/google/uuid"

type TeamStats struct {
	TeamID         uuid.UUID `db:"team_id" json:"team_id"`
	GroupID        uuid.UUID `db:"group_id" json:"group_id"`
	Position       int       `db:"position" json:"position"`
	GamesPlayed    int       `db:"games_played" json:"games_played"`
	Points         int       `db:"points" json:"points"`
	Wins           int       `db:"wins" json:"wins"`
	Draws          int       `db:"draws" json:"draws"`
	Losses         int       `db:"losses" json:"losses"`
	GoalsFor       int       `db:"goals_for" json:"goals_for"`
	GoalsAgainst   int       `db:"goals_against" json:"goals_against"`
	GoalDifference int       `db:"goal_difference" json:"goal_difference"`
	ConductScore   int       `db:"conduct_score" json:"conduct_score"`
	IsComplete     bool      `db:"is_complete" json:"is_complete"`
}

type HonorRoll struct {
	Champion   *uuid.UUID `json:"champion"`
	RunnerUp   *uuid.UUID `json:"runner_up"`
	ThirdPlace *uuid.UUID `json:"third_place"`

	// Complete is set once the final and third-place game have real results
	Complete bool `json:"complete"`
}

type HonorRollGuess struct {
	UserID       uuid.UUID  `db:"user_id"`
	TournamentID uuid.UUID  `db:"tournament_id"`
	Champion     *uuid.UUID `db:"champion_id"`
	RunnerUp     *uuid.UUID `db:"runner_up_id"`
	ThirdPlace   *uuid.UUID `db:"third_place_id"`
}
