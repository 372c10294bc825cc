package resolver

import (
	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/google/uuid"
)

// HonorRollFrom reads champion, runner-up and third place off the real results of the final
// and third-place game, attributed to the teams in resolved. Identities stamped on the
// results are ignored since they go stale when an earlier result is corrected. The roll is
// complete once both games are decided, or just the final when the schedule has no
// third-place game.
func HonorRollFrom(allGames []bracket.Game, results map[uuid.UUID]bracket.GameResult, resolved map[uuid.UUID]bracket.ResolvedTeams) bracket.HonorRoll {
	var final, third *bracket.Game
	for i := range allGames {
		switch allGames[i].Stage {
		case bracket.StageFinal:
			final = &allGames[i]
		case bracket.StageThirdPlace:
			third = &allGames[i]
		}
	}
	if final == nil {
		return bracket.HonorRoll{}
	}

	var roll bracket.HonorRoll
	if res, ok := results[final.ID]; ok && res.IsFinal() {
		teams := resolved[final.ID]
		roll.Champion = Winner(res, teams.HomeTeamID, teams.AwayTeamID)
		roll.RunnerUp = Loser(res, teams.HomeTeamID, teams.AwayTeamID)
	}
	roll.Complete = roll.Champion != nil && roll.RunnerUp != nil

	if third != nil {
		if res, ok := results[third.ID]; ok && res.IsFinal() {
			teams := resolved[third.ID]
			roll.ThirdPlace = Winner(res, teams.HomeTeamID, teams.AwayTeamID)
		}
		roll.Complete = roll.Complete && roll.ThirdPlace != nil
	}

	return roll
}
