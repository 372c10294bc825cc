package resolver

import (
	"fmt"
	"testing"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func result(gameID uuid.UUID, home, away int) bracket.GameResult {
	return bracket.GameResult{GameID: gameID, HomeScore: utils.Ptr(home), AwayScore: utils.Ptr(away)}
}

func guess(gameID uuid.UUID, home, away int) bracket.GameGuess {
	return bracket.GameGuess{ID: uuid.New(), GameID: gameID, HomeScore: utils.Ptr(home), AwayScore: utils.Ptr(away)}
}

func completeTable(groupID uuid.UUID, ids ...uuid.UUID) []bracket.TeamStats {
	stats := make([]bracket.TeamStats, len(ids))
	for i, id := range ids {
		stats[i] = bracket.TeamStats{TeamID: id, GroupID: groupID, Position: i + 1, IsComplete: true}
	}
	return stats
}

// fourTeamBracket is two semifinals, a third-place game and a final between fixed teams.
type fourTeamBracket struct {
	semi1, semi2, third, final bracket.Game
	games                      []bracket.Game
}

func newFourTeamBracket() fourTeamBracket {
	b := fourTeamBracket{
		semi1: bracket.Game{ID: uuid.New(), GameNumber: 1, Stage: bracket.StageSemiFinal, RoundNumber: 1,
			Home: bracket.TeamSlot{TeamID: teamID(1)}, Away: bracket.TeamSlot{TeamID: teamID(4)}},
		semi2: bracket.Game{ID: uuid.New(), GameNumber: 2, Stage: bracket.StageSemiFinal, RoundNumber: 1,
			Home: bracket.TeamSlot{TeamID: teamID(2)}, Away: bracket.TeamSlot{TeamID: teamID(3)}},
		third: bracket.Game{ID: uuid.New(), GameNumber: 3, Stage: bracket.StageThirdPlace, RoundNumber: 2,
			Home: bracket.TeamRule{SourceGameNumber: 1}, Away: bracket.TeamRule{SourceGameNumber: 2}},
		final: bracket.Game{ID: uuid.New(), GameNumber: 4, Stage: bracket.StageFinal, RoundNumber: 2,
			Home: bracket.TeamRule{SourceGameNumber: 1, WantsWinner: true}, Away: bracket.TeamRule{SourceGameNumber: 2, WantsWinner: true}},
	}
	b.games = []bracket.Game{b.semi1, b.semi2, b.third, b.final}
	return b
}

func TestResolveGroupPositions(t *testing.T) {
	groupA, groupB := uuid.New(), uuid.New()
	game := bracket.Game{
		ID: uuid.New(), GameNumber: 49, Stage: bracket.StageRoundOf16,
		Home: bracket.GroupPositionRule{GroupID: groupA, Position: 1},
		Away: bracket.GroupPositionRule{GroupID: groupB, Position: 2},
	}
	t1, t9 := teamID(1), teamID(9)

	t.Run("both groups complete", func(t *testing.T) {
		tables := map[uuid.UUID][]bracket.TeamStats{
			groupA: completeTable(groupA, t1, teamID(2)),
			groupB: completeTable(groupB, teamID(8), t9),
		}
		teams := ResolveTeams(game, nil, nil, []bracket.Game{game}, tables)
		require.True(t, teams.Complete())
		assert.Equal(t, t1, *teams.HomeTeamID)
		assert.Equal(t, t9, *teams.AwayTeamID)
	})

	t.Run("incomplete group stays open", func(t *testing.T) {
		tableB := completeTable(groupB, teamID(8), t9)
		tableB[0].IsComplete = false
		tables := map[uuid.UUID][]bracket.TeamStats{
			groupA: completeTable(groupA, t1, teamID(2)),
			groupB: tableB,
		}
		teams := ResolveTeams(game, nil, nil, []bracket.Game{game}, tables)
		require.NotNil(t, teams.HomeTeamID)
		assert.Nil(t, teams.AwayTeamID)
	})

	t.Run("position outside the table", func(t *testing.T) {
		bad := game
		bad.Away = bracket.GroupPositionRule{GroupID: groupA, Position: 3}
		tables := map[uuid.UUID][]bracket.TeamStats{groupA: completeTable(groupA, t1, teamID(2))}

		r := New([]bracket.Game{bad}, nil, nil, tables)
		teams := r.Resolve(bad)
		assert.Nil(t, teams.AwayTeamID)
		require.Len(t, r.Issues(), 1)
		assert.Equal(t, IssueInvalidPosition, r.Issues()[0].Kind)
	})
}

func TestResolveWinnersAndLosers(t *testing.T) {
	b := newFourTeamBracket()

	testCases := []struct {
		name          string
		results       map[uuid.UUID]bracket.GameResult
		guesses       map[uuid.UUID]bracket.GameGuess
		expectedFinal [2]*uuid.UUID
		expectedThird [2]*uuid.UUID
	}{
		{
			name: "real results",
			results: map[uuid.UUID]bracket.GameResult{
				b.semi1.ID: result(b.semi1.ID, 2, 0),
				b.semi2.ID: result(b.semi2.ID, 0, 1),
			},
			expectedFinal: [2]*uuid.UUID{utils.Ptr(teamID(1)), utils.Ptr(teamID(3))},
			expectedThird: [2]*uuid.UUID{utils.Ptr(teamID(4)), utils.Ptr(teamID(2))},
		},
		{
			name: "guesses fill in where no result exists",
			results: map[uuid.UUID]bracket.GameResult{
				b.semi1.ID: result(b.semi1.ID, 0, 3),
			},
			guesses: map[uuid.UUID]bracket.GameGuess{
				b.semi1.ID: guess(b.semi1.ID, 5, 0),
				b.semi2.ID: guess(b.semi2.ID, 2, 1),
			},
			expectedFinal: [2]*uuid.UUID{utils.Ptr(teamID(4)), utils.Ptr(teamID(2))},
			expectedThird: [2]*uuid.UUID{utils.Ptr(teamID(1)), utils.Ptr(teamID(3))},
		},
		{
			name: "draw without penalties is undecided",
			results: map[uuid.UUID]bracket.GameResult{
				b.semi1.ID: result(b.semi1.ID, 1, 1),
			},
			expectedFinal: [2]*uuid.UUID{nil, nil},
			expectedThird: [2]*uuid.UUID{nil, nil},
		},
		{
			name: "draw settled on penalties",
			results: map[uuid.UUID]bracket.GameResult{
				b.semi1.ID: func() bracket.GameResult {
					r := result(b.semi1.ID, 1, 1)
					r.AwayPenaltyWinner = true
					return r
				}(),
			},
			expectedFinal: [2]*uuid.UUID{utils.Ptr(teamID(4)), nil},
			expectedThird: [2]*uuid.UUID{utils.Ptr(teamID(1)), nil},
		},
		{
			name: "incomplete score is ignored",
			guesses: map[uuid.UUID]bracket.GameGuess{
				b.semi1.ID: {GameID: b.semi1.ID, HomeScore: utils.Ptr(1)},
			},
			expectedFinal: [2]*uuid.UUID{nil, nil},
			expectedThird: [2]*uuid.UUID{nil, nil},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(b.games, tc.results, tc.guesses, nil)
			final := r.Resolve(b.final)
			third := r.Resolve(b.third)

			assert.Equal(t, tc.expectedFinal[0], final.HomeTeamID)
			assert.Equal(t, tc.expectedFinal[1], final.AwayTeamID)
			assert.Equal(t, tc.expectedThird[0], third.HomeTeamID)
			assert.Equal(t, tc.expectedThird[1], third.AwayTeamID)
			assert.Empty(t, r.Issues())
		})
	}
}

func TestResolveMultipleRounds(t *testing.T) {
	group := uuid.New()
	table := completeTable(group, teamID(1), teamID(2), teamID(3), teamID(4))
	qf1 := bracket.Game{ID: uuid.New(), GameNumber: 10, Stage: bracket.StageQuarterFinal,
		Home: bracket.GroupPositionRule{GroupID: group, Position: 1}, Away: bracket.GroupPositionRule{GroupID: group, Position: 4}}
	qf2 := bracket.Game{ID: uuid.New(), GameNumber: 11, Stage: bracket.StageQuarterFinal,
		Home: bracket.GroupPositionRule{GroupID: group, Position: 2}, Away: bracket.GroupPositionRule{GroupID: group, Position: 3}}
	final := bracket.Game{ID: uuid.New(), GameNumber: 12, Stage: bracket.StageFinal,
		Home: bracket.TeamRule{SourceGameNumber: 10, WantsWinner: true}, Away: bracket.TeamRule{SourceGameNumber: 11, WantsWinner: true}}
	games := []bracket.Game{final, qf2, qf1}

	guesses := map[uuid.UUID]bracket.GameGuess{
		qf1.ID: guess(qf1.ID, 0, 1),
		qf2.ID: guess(qf2.ID, 2, 0),
	}
	tables := map[uuid.UUID][]bracket.TeamStats{group: table}

	r := New(games, nil, guesses, tables)
	all := r.ResolveAll()
	require.Len(t, all, 3)
	assert.Equal(t, teamID(4), *all[final.ID].HomeTeamID)
	assert.Equal(t, teamID(2), *all[final.ID].AwayTeamID)

	again := New(games, nil, guesses, tables).ResolveAll()
	assert.Equal(t, all, again, "resolution is idempotent")
	assert.Nil(t, guesses[qf1.ID].HomeTeamID, "guesses are never written to")
}

func TestResolveMalformedReferences(t *testing.T) {
	first := bracket.Game{ID: uuid.New(), GameNumber: 1, Stage: bracket.StageSemiFinal,
		Home: bracket.TeamRule{SourceGameNumber: 2, WantsWinner: true}, Away: bracket.TeamSlot{TeamID: teamID(1)}}
	second := bracket.Game{ID: uuid.New(), GameNumber: 2, Stage: bracket.StageSemiFinal,
		Home: bracket.TeamRule{SourceGameNumber: 1, WantsWinner: true}, Away: bracket.TeamSlot{TeamID: teamID(2)}}
	orphan := bracket.Game{ID: uuid.New(), GameNumber: 3, Stage: bracket.StageFinal,
		Home: bracket.TeamRule{SourceGameNumber: 42, WantsWinner: true}, Away: bracket.TeamSlot{TeamID: teamID(3)}}
	games := []bracket.Game{first, second, orphan}
	results := map[uuid.UUID]bracket.GameResult{
		first.ID:  result(first.ID, 1, 0),
		second.ID: result(second.ID, 1, 0),
	}

	t.Run("cycle terminates", func(t *testing.T) {
		r := New(games, results, nil, nil)
		teams := r.Resolve(first)
		assert.Nil(t, teams.HomeTeamID)
		require.NotNil(t, teams.AwayTeamID)
		assert.Equal(t, teamID(1), *teams.AwayTeamID)

		require.NotEmpty(t, r.Issues())
		assert.Equal(t, IssueDepthExceeded, r.Issues()[0].Kind)
	})

	t.Run("issues come out in the same order every pass", func(t *testing.T) {
		twoBad := bracket.Game{ID: uuid.New(), GameNumber: 4, Stage: bracket.StageFinal,
			Home: bracket.TeamRule{SourceGameNumber: 40, WantsWinner: true}, Away: bracket.TeamRule{SourceGameNumber: 41}}
		all := []bracket.Game{orphan, second, twoBad, first}

		r := New(all, results, nil, nil)
		r.ResolveAll()
		want := r.Issues()
		require.NotEmpty(t, want)
		assert.Contains(t, want, Issue{GameNumber: 4, Kind: IssueUnknownGameNumber, Reference: 40})

		for i := 0; i < 20; i++ {
			shuffled := []bracket.Game{all[i%4], all[(i+1)%4], all[(i+2)%4], all[(i+3)%4]}
			again := New(shuffled, results, nil, nil)
			again.ResolveAll()
			assert.Equal(t, want, again.Issues())
		}
	})

	t.Run("unknown game number", func(t *testing.T) {
		r := New(games, results, nil, nil)
		teams := r.Resolve(orphan)
		assert.Nil(t, teams.HomeTeamID)
		assert.Equal(t, []Issue{{GameNumber: 3, Kind: IssueUnknownGameNumber, Reference: 42}}, r.Issues())
	})
}

func TestOutcomeDerivation(t *testing.T) {
	home, away := utils.Ptr(teamID(1)), utils.Ptr(teamID(2))

	testCases := []struct {
		name   string
		line   bracket.Scoreline
		winner *uuid.UUID
		loser  *uuid.UUID
	}{
		{name: "home win", line: result(uuid.Nil, 3, 1), winner: home, loser: away},
		{name: "away win", line: guess(uuid.Nil, 0, 2), winner: away, loser: home},
		{name: "draw without penalties", line: result(uuid.Nil, 2, 2)},
		{name: "draw with home penalty winner", line: bracket.GameGuess{HomeScore: utils.Ptr(0), AwayScore: utils.Ptr(0), HomePenaltyWinner: true}, winner: home, loser: away},
		{name: "both penalty flags set", line: bracket.GameResult{HomeScore: utils.Ptr(0), AwayScore: utils.Ptr(0), HomePenaltyWinner: true, AwayPenaltyWinner: true}},
		{name: "missing score", line: bracket.GameResult{HomeScore: utils.Ptr(1)}},
		{name: "no scoreline", line: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.winner, Winner(tc.line, home, away))
			assert.Equal(t, tc.loser, Loser(tc.line, home, away))
		})
	}

	assert.Nil(t, Winner(result(uuid.Nil, 1, 0), nil, away), "unresolved winners propagate as nil")
}

func TestDependents(t *testing.T) {
	group := uuid.New()
	groupGame := bracket.Game{ID: uuid.New(), GameNumber: 1, Stage: bracket.StageGroup, GroupID: &group,
		Home: bracket.TeamSlot{TeamID: teamID(1)}, Away: bracket.TeamSlot{TeamID: teamID(2)}}
	semi := bracket.Game{ID: uuid.New(), GameNumber: 2, Stage: bracket.StageSemiFinal,
		Home: bracket.GroupPositionRule{GroupID: group, Position: 1}, Away: bracket.TeamSlot{TeamID: teamID(3)}}
	other := bracket.Game{ID: uuid.New(), GameNumber: 3, Stage: bracket.StageSemiFinal,
		Home: bracket.TeamSlot{TeamID: teamID(4)}, Away: bracket.TeamSlot{TeamID: teamID(5)}}
	third := bracket.Game{ID: uuid.New(), GameNumber: 4, Stage: bracket.StageThirdPlace,
		Home: bracket.TeamRule{SourceGameNumber: 2}, Away: bracket.TeamRule{SourceGameNumber: 3}}
	final := bracket.Game{ID: uuid.New(), GameNumber: 5, Stage: bracket.StageFinal,
		Home: bracket.TeamRule{SourceGameNumber: 2, WantsWinner: true}, Away: bracket.TeamRule{SourceGameNumber: 3, WantsWinner: true}}
	games := []bracket.Game{final, third, other, semi, groupGame}

	numbers := func(gs []bracket.Game) []int {
		out := make([]int, len(gs))
		for i, g := range gs {
			out[i] = g.GameNumber
		}
		return out
	}

	assert.Equal(t, []int{2, 4, 5}, numbers(Dependents(games, 1)))
	assert.Equal(t, []int{4, 5}, numbers(Dependents(games, 3)))
	assert.Empty(t, Dependents(games, 5))
	assert.Nil(t, Dependents(games, 77))
}

func TestReconcile(t *testing.T) {
	b := newFourTeamBracket()
	t1, t2, t3, t4 := teamID(1), teamID(2), teamID(3), teamID(4)

	finalGuess := guess(b.final.ID, 1, 0)
	finalGuess.HomeTeamID, finalGuess.AwayTeamID = &t1, &t3
	thirdGuess := guess(b.third.ID, 0, 0)
	thirdGuess.HomeTeamID, thirdGuess.AwayTeamID = &t4, &t2

	base := map[uuid.UUID]bracket.GameGuess{
		b.semi1.ID: guess(b.semi1.ID, 2, 0),
		b.semi2.ID: guess(b.semi2.ID, 0, 1),
		b.final.ID: finalGuess,
		b.third.ID: thirdGuess,
	}

	t.Run("score edit keeping the winner changes nothing", func(t *testing.T) {
		guesses := clone(base)
		guesses[b.semi1.ID] = guess(b.semi1.ID, 4, 1)
		assert.Empty(t, Reconcile(b.games, nil, guesses, nil, 1))
	})

	t.Run("new winner rewrites downstream identities", func(t *testing.T) {
		guesses := clone(base)
		guesses[b.semi1.ID] = guess(b.semi1.ID, 0, 1)

		changed := Reconcile(b.games, nil, guesses, nil, 1)
		require.Len(t, changed, 2)

		assert.Equal(t, b.third.ID, changed[0].GameID)
		assert.Equal(t, t1, *changed[0].HomeTeamID)
		assert.Equal(t, t2, *changed[0].AwayTeamID)

		assert.Equal(t, b.final.ID, changed[1].GameID)
		assert.Equal(t, t4, *changed[1].HomeTeamID)
		assert.Equal(t, t3, *changed[1].AwayTeamID)
		assert.Equal(t, finalGuess.HomeScore, changed[1].HomeScore)

		assert.Equal(t, t1, *guesses[b.final.ID].HomeTeamID, "input guesses are left alone")
	})

	t.Run("real result wins over the edited guess", func(t *testing.T) {
		guesses := clone(base)
		guesses[b.semi1.ID] = guess(b.semi1.ID, 0, 1)
		results := map[uuid.UUID]bracket.GameResult{b.semi1.ID: result(b.semi1.ID, 3, 0)}
		assert.Empty(t, Reconcile(b.games, results, guesses, nil, 1))
	})
}

func TestHonorRollFrom(t *testing.T) {
	b := newFourTeamBracket()
	results := map[uuid.UUID]bracket.GameResult{
		b.semi1.ID: result(b.semi1.ID, 2, 0),
		b.semi2.ID: result(b.semi2.ID, 0, 1),
	}
	resolved := func() map[uuid.UUID]bracket.ResolvedTeams {
		return New(b.games, results, nil, nil).ResolveAll()
	}

	roll := HonorRollFrom(b.games, results, resolved())
	assert.False(t, roll.Complete)
	assert.Nil(t, roll.Champion)

	finalResult := result(b.final.ID, 1, 1)
	finalResult.AwayPenaltyWinner = true
	results[b.final.ID] = finalResult
	roll = HonorRollFrom(b.games, results, resolved())
	assert.False(t, roll.Complete, "third place still open")
	assert.Equal(t, teamID(3), *roll.Champion)
	assert.Equal(t, teamID(1), *roll.RunnerUp)

	results[b.third.ID] = result(b.third.ID, 2, 3)
	roll = HonorRollFrom(b.games, results, resolved())
	assert.True(t, roll.Complete)
	assert.Equal(t, teamID(2), *roll.ThirdPlace)

	noThird := []bracket.Game{b.semi1, b.semi2, b.final}
	roll = HonorRollFrom(noThird, results, New(noThird, results, nil, nil).ResolveAll())
	assert.True(t, roll.Complete)
	assert.Nil(t, roll.ThirdPlace)

	assert.Equal(t, bracket.HonorRoll{}, HonorRollFrom(nil, results, nil))

	// Semi 2 was corrected after the final was stamped with the old finalists
	stale := result(b.final.ID, 1, 0)
	stale.HomeTeamID, stale.AwayTeamID = utils.Ptr(teamID(4)), utils.Ptr(teamID(2))
	results[b.final.ID] = stale
	roll = HonorRollFrom(b.games, results, resolved())
	assert.Equal(t, teamID(1), *roll.Champion, "the resolved finalists count, not the stamped ones")
	assert.Equal(t, teamID(3), *roll.RunnerUp)
}

func clone(in map[uuid.UUID]bracket.GameGuess) map[uuid.UUID]bracket.GameGuess {
	out := make(map[uuid.UUID]bracket.GameGuess, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
