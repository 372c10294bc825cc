package bracket

import "github.com/google/uuid"

type Side int

const (
	SideNone Side = iota
	SideHome
	SideAway
)

// Scoreline is anything carrying a score pair and a penalty winner, which covers both real
// results and guesses.
type Scoreline interface {
	Scores() (home, away *int)
	PenaltyWinner() Side
}

type GameResult struct {
	GameID uuid.UUID `db:"game_id"`

	HomeScore *int `db:"home_score"`
	AwayScore *int `db:"away_score"`

	HomePenaltyScore  *int `db:"home_penalty_score"`
	AwayPenaltyScore  *int `db:"away_penalty_score"`
	HomePenaltyWinner bool `db:"home_penalty_winner"`
	AwayPenaltyWinner bool `db:"away_penalty_winner"`

	// Teams that actually played, stamped when the result is recorded
	HomeTeamID *uuid.UUID `db:"home_team_id"`
	AwayTeamID *uuid.UUID `db:"away_team_id"`
}

func (r GameResult) Scores() (*int, *int) {
	return r.HomeScore, r.AwayScore
}

func (r GameResult) PenaltyWinner() Side {
	return penaltySide(r.HomePenaltyWinner, r.AwayPenaltyWinner)
}

func (r GameResult) IsFinal() bool {
	return r.HomeScore != nil && r.AwayScore != nil
}

type GameGuess struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`
	GameID uuid.UUID `db:"game_id"`

	HomeScore *int `db:"home_score"`
	AwayScore *int `db:"away_score"`

	HomePenaltyWinner bool `db:"home_penalty_winner"`
	AwayPenaltyWinner bool `db:"away_penalty_winner"`

	// Bracket identity the guess is about, only meaningful for playoff games
	HomeTeamID *uuid.UUID `db:"home_team_id"`
	AwayTeamID *uuid.UUID `db:"away_team_id"`
}

func (g GameGuess) Scores() (*int, *int) {
	return g.HomeScore, g.AwayScore
}

func (g GameGuess) PenaltyWinner() Side {
	return penaltySide(g.HomePenaltyWinner, g.AwayPenaltyWinner)
}

func (g GameGuess) IsComplete() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// AsResult lets a guess stand in for a result when computing predicted standings.
func (g GameGuess) AsResult() GameResult {
	return GameResult{
		GameID:            g.GameID,
		HomeScore:         g.HomeScore,
		AwayScore:         g.AwayScore,
		HomePenaltyWinner: g.HomePenaltyWinner,
		AwayPenaltyWinner: g.AwayPenaltyWinner,
		HomeTeamID:        g.HomeTeamID,
		AwayTeamID:        g.AwayTeamID,
	}
}

// Both flags set is contradictory and counts as no penalty winner.
func penaltySide(home, away bool) Side {
	switch {
	case home && !away:
		return SideHome
	case away && !home:
		return SideAway
	default:
		return SideNone
	}
}
