package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/service"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
	"github.com/google/uuid"
)

const maxNameLength = 50

// parseGroups reads one group per line, "Name: Team, Team". A line without a colon is a
// group of teams with a generated name.
func parseGroups(text string) ([]service.GroupInput, error) {
	var groups []service.GroupInput
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var group service.GroupInput
		if name, teams, found := strings.Cut(line, ":"); found {
			group.Name = strings.TrimSpace(name)
			line = teams
		}
		for _, team := range strings.Split(line, ",") {
			team = strings.TrimSpace(team)
			if team == "" {
				continue
			}
			if len(team) > maxNameLength {
				return nil, fmt.Errorf("team name '%s' exceeds %d characters", team, maxNameLength)
			}
			group.Teams = append(group.Teams, service.TeamInput{Name: team})
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func optionalInt(r *http.Request, key string) (*int, error) {
	n, err := utils.ParseOrNil(r.Form.Get(key), strconv.Atoi)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func optionalUUID(r *http.Request, key string) (*uuid.UUID, error) {
	id, err := utils.ParseOrNil(r.Form.Get(key), uuid.Parse)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return id, nil
}

func parseSide(raw string) bracket.Side {
	switch raw {
	case "home":
		return bracket.SideHome
	case "away":
		return bracket.SideAway
	default:
		return bracket.SideNone
	}
}

func scorePair(r *http.Request, homeKey, awayKey string) (*int, *int, error) {
	home, err := optionalInt(r, homeKey)
	if err != nil {
		return nil, nil, err
	}
	away, err := optionalInt(r, awayKey)
	if err != nil {
		return nil, nil, err
	}
	return home, away, nil
}

func parseResultForm(r *http.Request) (service.ResultInput, error) {
	var input service.ResultInput
	var err error
	if input.HomeScore, input.AwayScore, err = scorePair(r, "home_score", "away_score"); err != nil {
		return input, err
	}
	if input.HomePenaltyScore, input.AwayPenaltyScore, err = scorePair(r, "home_penalty", "away_penalty"); err != nil {
		return input, err
	}
	input.PenaltyWinner = parseSide(r.Form.Get("penalty_winner"))
	return input, nil
}

func parseGuessForm(r *http.Request) (service.GuessInput, error) {
	var input service.GuessInput
	var err error
	if input.HomeScore, input.AwayScore, err = scorePair(r, "home_score", "away_score"); err != nil {
		return input, err
	}
	input.PenaltyWinner = parseSide(r.Form.Get("penalty_winner"))
	return input, nil
}

func parseHonorRollForm(r *http.Request) (service.HonorRollInput, error) {
	var input service.HonorRollInput
	var err error
	if input.Champion, err = optionalUUID(r, "champion"); err != nil {
		return input, err
	}
	if input.RunnerUp, err = optionalUUID(r, "runner_up"); err != nil {
		return input, err
	}
	if input.ThirdPlace, err = optionalUUID(r, "third_place"); err != nil {
		return input, err
	}
	return input, nil
}
