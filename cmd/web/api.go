package main

import (
	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/service"
	"github.com/google/uuid"
)

type groupTable struct {
	Group bracket.Group       `json:"group"`
	Teams []bracket.TeamStats `json:"teams"`
}

type bracketGame struct {
	GameNumber    int           `json:"game_number"`
	Stage         bracket.Stage `json:"stage"`
	Round         int           `json:"round"`
	HomeTeamID    *uuid.UUID    `json:"home_team_id"`
	AwayTeamID    *uuid.UUID    `json:"away_team_id"`
	HomeScore     *int          `json:"home_score,omitempty"`
	AwayScore     *int          `json:"away_score,omitempty"`
	PenaltyWinner string        `json:"penalty_winner,omitempty"`
	Simulated     bool          `json:"simulated,omitempty"`
}

type bracketResponse struct {
	Teams     []bracket.Team    `json:"teams"`
	Games     []bracketGame     `json:"games"`
	HonorRoll bracket.HonorRoll `json:"honor_roll"`
}

func standingsResponse(o *service.Overview) []groupTable {
	tables := make([]groupTable, 0, len(o.Groups))
	for _, g := range o.Groups {
		tables = append(tables, groupTable{Group: g, Teams: o.Standings[g.ID]})
	}
	return tables
}

func newBracketResponse(o *service.Overview) bracketResponse {
	resp := bracketResponse{Teams: o.Teams, HonorRoll: o.HonorRoll}
	for _, g := range o.Games {
		if !g.IsPlayoff() {
			continue
		}
		teams := o.Bracket[g.ID]
		game := bracketGame{
			GameNumber: g.GameNumber,
			Stage:      g.Stage,
			Round:      g.RoundNumber,
			HomeTeamID: teams.HomeTeamID,
			AwayTeamID: teams.AwayTeamID,
			Simulated:  o.Simulated[g.ID],
		}
		if res, ok := o.Results[g.ID]; ok && res.IsFinal() {
			game.HomeScore, game.AwayScore = res.HomeScore, res.AwayScore
			switch res.PenaltyWinner() {
			case bracket.SideHome:
				game.PenaltyWinner = "home"
			case bracket.SideAway:
				game.PenaltyWinner = "away"
			}
		}
		resp.Games = append(resp.Games, game)
	}
	return resp
}
