package store

import (
	"database/sql"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/google/uuid"
)

// gameRow is a games row with both slots flattened into nullable columns.
type gameRow struct {
	ID           uuid.UUID     `db:"id"`
	TournamentID uuid.UUID     `db:"tournament_id"`
	GameNumber   int           `db:"game_number"`
	Stage        bracket.Stage `db:"stage"`
	RoundNumber  int           `db:"round_number"`
	GroupID      *uuid.UUID    `db:"group_id"`

	HomeTeamID        *uuid.UUID    `db:"home_team_id"`
	HomeSourceGame    sql.NullInt64 `db:"home_source_game"`
	HomeWantsWinner   bool          `db:"home_wants_winner"`
	HomeGroupID       *uuid.UUID    `db:"home_group_id"`
	HomeGroupPosition sql.NullInt64 `db:"home_group_position"`

	AwayTeamID        *uuid.UUID    `db:"away_team_id"`
	AwaySourceGame    sql.NullInt64 `db:"away_source_game"`
	AwayWantsWinner   bool          `db:"away_wants_winner"`
	AwayGroupID       *uuid.UUID    `db:"away_group_id"`
	AwayGroupPosition sql.NullInt64 `db:"away_group_position"`
}

const gameColumns = `id, tournament_id, game_number, stage, round_number, group_id,
	home_team_id, home_source_game, home_wants_winner, home_group_id, home_group_position,
	away_team_id, away_source_game, away_wants_winner, away_group_id, away_group_position`

type slotColumns struct {
	teamID        *uuid.UUID
	sourceGame    sql.NullInt64
	wantsWinner   bool
	groupID       *uuid.UUID
	groupPosition sql.NullInt64
}

func flattenSlot(s bracket.Slot) slotColumns {
	switch v := s.(type) {
	case bracket.TeamSlot:
		return slotColumns{teamID: &v.TeamID}
	case bracket.TeamRule:
		return slotColumns{
			sourceGame:  sql.NullInt64{Int64: int64(v.SourceGameNumber), Valid: true},
			wantsWinner: v.WantsWinner,
		}
	case bracket.GroupPositionRule:
		return slotColumns{
			groupID:       &v.GroupID,
			groupPosition: sql.NullInt64{Int64: int64(v.Position), Valid: true},
		}
	default:
		return slotColumns{}
	}
}

func (c slotColumns) slot() bracket.Slot {
	switch {
	case c.teamID != nil:
		return bracket.TeamSlot{TeamID: *c.teamID}
	case c.sourceGame.Valid:
		return bracket.TeamRule{SourceGameNumber: int(c.sourceGame.Int64), WantsWinner: c.wantsWinner}
	case c.groupID != nil && c.groupPosition.Valid:
		return bracket.GroupPositionRule{GroupID: *c.groupID, Position: int(c.groupPosition.Int64)}
	default:
		return nil
	}
}

func newGameRow(g bracket.Game) gameRow {
	home, away := flattenSlot(g.Home), flattenSlot(g.Away)
	return gameRow{
		ID:           g.ID,
		TournamentID: g.TournamentID,
		GameNumber:   g.GameNumber,
		Stage:        g.Stage,
		RoundNumber:  g.RoundNumber,
		GroupID:      g.GroupID,

		HomeTeamID:        home.teamID,
		HomeSourceGame:    home.sourceGame,
		HomeWantsWinner:   home.wantsWinner,
		HomeGroupID:       home.groupID,
		HomeGroupPosition: home.groupPosition,

		AwayTeamID:        away.teamID,
		AwaySourceGame:    away.sourceGame,
		AwayWantsWinner:   away.wantsWinner,
		AwayGroupID:       away.groupID,
		AwayGroupPosition: away.groupPosition,
	}
}

func (r gameRow) game() bracket.Game {
	return bracket.Game{
		ID:           r.ID,
		TournamentID: r.TournamentID,
		GameNumber:   r.GameNumber,
		Stage:        r.Stage,
		RoundNumber:  r.RoundNumber,
		GroupID:      r.GroupID,
		Home: slotColumns{
			teamID:        r.HomeTeamID,
			sourceGame:    r.HomeSourceGame,
			wantsWinner:   r.HomeWantsWinner,
			groupID:       r.HomeGroupID,
			groupPosition: r.HomeGroupPosition,
		}.slot(),
		Away: slotColumns{
			teamID:        r.AwayTeamID,
			sourceGame:    r.AwaySourceGame,
			wantsWinner:   r.AwayWantsWinner,
			groupID:       r.AwayGroupID,
			groupPosition: r.AwayGroupPosition,
		}.slot(),
	}
}
