package views

import (
	"fmt"
	"slices"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/service"
	"github.com/a-h/templ"
	"github.com/google/uuid"
)

func TournamentView(o *service.Overview, canEdit bool) templ.Component {
	return tournamentPage(o, PrepareBracketData(o.Groups, o.Teams, o.Games, o.Bracket, o.Results, nil), canEdit)
}

func PredictionsView(b *service.PredictedBracket) templ.Component {
	return predictionsPage(b, PrepareBracketData(b.Groups, b.Teams, b.Games, b.Bracket, b.Results, b.Guesses))
}

// GameCard is one fixture as a page shows it, with the slot occupants already named.
type GameCard struct {
	Game     bracket.Game
	Home     string
	Away     string
	Resolved bracket.ResolvedTeams
	Result   *bracket.GameResult
	Guess    *bracket.GameGuess
}

type BracketData struct {
	GroupGames map[uuid.UUID][]GameCard
	Rounds     map[int][]GameCard
	RoundNums  []int
	TeamMap    map[uuid.UUID]bracket.Team
	GroupMap   map[uuid.UUID]bracket.Group
}

func PrepareBracketData(groups []bracket.Group, teams []bracket.Team, games []bracket.Game, resolved map[uuid.UUID]bracket.ResolvedTeams, results map[uuid.UUID]bracket.GameResult, guesses map[uuid.UUID]bracket.GameGuess) BracketData {
	data := BracketData{
		GroupGames: make(map[uuid.UUID][]GameCard),
		Rounds:     make(map[int][]GameCard),
		TeamMap:    make(map[uuid.UUID]bracket.Team, len(teams)),
		GroupMap:   make(map[uuid.UUID]bracket.Group, len(groups)),
	}
	for _, t := range teams {
		data.TeamMap[t.ID] = t
	}
	for _, g := range groups {
		data.GroupMap[g.ID] = g
	}

	for _, g := range games {
		card := GameCard{Game: g, Resolved: resolved[g.ID]}
		card.Home = data.slotLabel(g.Home, card.Resolved.HomeTeamID)
		card.Away = data.slotLabel(g.Away, card.Resolved.AwayTeamID)
		if res, ok := results[g.ID]; ok && res.IsFinal() {
			card.Result = &res
		}
		if guess, ok := guesses[g.ID]; ok {
			card.Guess = &guess
		}

		if !g.IsPlayoff() && g.GroupID != nil {
			data.GroupGames[*g.GroupID] = append(data.GroupGames[*g.GroupID], card)
			continue
		}
		if _, exists := data.Rounds[g.RoundNumber]; !exists {
			data.RoundNums = append(data.RoundNums, g.RoundNumber)
		}
		data.Rounds[g.RoundNumber] = append(data.Rounds[g.RoundNumber], card)
	}

	slices.Sort(data.RoundNums)
	byNumber := func(a, b GameCard) int { return a.Game.GameNumber - b.Game.GameNumber }
	for _, cards := range data.GroupGames {
		slices.SortFunc(cards, byNumber)
	}
	for _, cards := range data.Rounds {
		slices.SortFunc(cards, byNumber)
	}

	return data
}

// slotLabel names the team in a slot, or describes where it will come from.
func (d BracketData) slotLabel(slot bracket.Slot, teamID *uuid.UUID) string {
	if teamID != nil {
		if t, ok := d.TeamMap[*teamID]; ok {
			return t.Name
		}
	}
	switch s := slot.(type) {
	case bracket.TeamSlot:
		if t, ok := d.TeamMap[s.TeamID]; ok {
			return t.Name
		}
		return "TBD"
	case bracket.TeamRule:
		if s.WantsWinner {
			return fmt.Sprintf("Winner of game %d", s.SourceGameNumber)
		}
		return fmt.Sprintf("Loser of game %d", s.SourceGameNumber)
	case bracket.GroupPositionRule:
		return fmt.Sprintf("%s Group %s", ordinal(s.Position), d.GroupMap[s.GroupID].Name)
	default:
		return "TBD"
	}
}

func (d BracketData) TeamName(id *uuid.UUID) string {
	if id == nil {
		return "TBD"
	}
	if t, ok := d.TeamMap[*id]; ok {
		return t.Name
	}
	return "TBD"
}

// RoundTitle names a playoff round after the stage of its first game.
func (d BracketData) RoundTitle(round int) string {
	cards := d.Rounds[round]
	if len(cards) == 0 {
		return ""
	}
	return stageTitle(cards[0].Game.Stage)
}

func (c GameCard) ResultText() string {
	if c.Result == nil {
		return "vs"
	}
	text := scoreText(c.Result.HomeScore, c.Result.AwayScore)
	if c.Result.PenaltyWinner() != bracket.SideNone {
		text += " (pens)"
	}
	return text
}

// resultLine and guessLine keep a nil pointer out of the Scoreline interface.
func (c GameCard) resultLine() bracket.Scoreline {
	if c.Result == nil {
		return nil
	}
	return c.Result
}

func (c GameCard) guessLine() bracket.Scoreline {
	if c.Guess == nil {
		return nil
	}
	return c.Guess
}

func (c GameCard) guessSide() bracket.Side {
	if c.Guess == nil {
		return bracket.SideNone
	}
	return c.Guess.PenaltyWinner()
}

func homeScore(line bracket.Scoreline) *int {
	if line == nil {
		return nil
	}
	home, _ := line.Scores()
	return home
}

func awayScore(line bracket.Scoreline) *int {
	if line == nil {
		return nil
	}
	_, away := line.Scores()
	return away
}

func honorRollPicks(b *service.PredictedBracket) bracket.HonorRollGuess {
	if b.HonorRollGuess == nil {
		return bracket.HonorRollGuess{}
	}
	return *b.HonorRollGuess
}

func tournamentPath(id uuid.UUID, suffix string) string {
	return "/tournaments/" + id.String() + suffix
}

func gamePath(id uuid.UUID, suffix string) string {
	return "/games/" + id.String() + suffix
}

func teamPath(id uuid.UUID, suffix string) string {
	return "/teams/" + id.String() + suffix
}

func gameAnchor(g bracket.Game) string {
	return fmt.Sprintf("game-%d", g.GameNumber)
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func stageTitle(stage bracket.Stage) string {
	switch stage {
	case bracket.StageRoundOf32:
		return "Round of 32"
	case bracket.StageRoundOf16:
		return "Round of 16"
	case bracket.StageQuarterFinal:
		return "Quarter-finals"
	case bracket.StageSemiFinal:
		return "Semi-finals"
	case bracket.StageThirdPlace:
		return "Third place"
	case bracket.StageFinal:
		return "Final"
	default:
		return "Group stage"
	}
}

func scoreText(home, away *int) string {
	if home == nil || away == nil {
		return "-"
	}
	return fmt.Sprintf("%d - %d", *home, *away)
}
