package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/AdamBeresnev/tourney-predictor/internal/bracket"
	"github.com/AdamBeresnev/tourney-predictor/internal/middleware"
	"github.com/AdamBeresnev/tourney-predictor/internal/store"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ScheduleService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewScheduleService(db *sqlx.DB, store *store.TournamentStore) *ScheduleService {
	return &ScheduleService{db: db, store: store}
}

type TeamInput struct {
	Name      string
	ShortName string
}

type GroupInput struct {
	// Defaults to A, B, C... by position
	Name  string
	Teams []TeamInput
}

type ScheduleOptions struct {
	// Every pair meets twice, once at each home
	DoubleRoundRobin bool
	ThirdPlaceGame   bool
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// Seed order for a bracket of the given size, so that the top seeds meet as late as possible
func generateRound1Pairs(bracketSize int) [][2]int {
	if bracketSize == 0 {
		return [][2]int{}
	}

	rounds := []int{0}
	for len(rounds) < bracketSize {
		var nextRound []int
		currentCount := len(rounds) * 2

		for _, seed := range rounds {
			nextRound = append(nextRound, seed)
			nextRound = append(nextRound, (currentCount-1)-seed)
		}
		rounds = nextRound
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(rounds); i += 2 {
		matchup := [2]int{rounds[i], rounds[i+1]}
		pairs = append(pairs, matchup)
	}

	return pairs
}

// roundRobin pairs every team with every other using the circle method. Odd rosters get a
// bye slot (-1) that is dropped from the output. Returns index pairs per matchday.
func roundRobin(teamCount int) [][][2]int {
	if teamCount < 2 {
		return nil
	}

	slots := make([]int, 0, teamCount+1)
	for i := 0; i < teamCount; i++ {
		slots = append(slots, i)
	}
	if len(slots)%2 != 0 {
		slots = append(slots, -1)
	}
	n := len(slots)

	days := make([][][2]int, 0, n-1)
	for day := 0; day < n-1; day++ {
		var pairs [][2]int
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home < 0 || away < 0 {
				continue
			}
			// Alternate so nobody is always at home
			if day%2 == 1 {
				home, away = away, home
			}
			pairs = append(pairs, [2]int{home, away})
		}
		days = append(days, pairs)

		// Keep the first slot fixed and rotate the rest
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return days
}

func groupName(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("G%d", i+1)
}

func shortName(name string) string {
	letters := []rune(strings.ToUpper(strings.ReplaceAll(name, " ", "")))
	if len(letters) > 3 {
		letters = letters[:3]
	}
	return string(letters)
}

func validateGroups(groups []GroupInput) error {
	if len(groups) == 0 || calcBracketSize(len(groups)) != len(groups) {
		return ErrInvalidGroupCount
	}
	for _, g := range groups {
		named := 0
		for _, t := range g.Teams {
			if strings.TrimSpace(t.Name) != "" {
				named++
			}
		}
		if named < 2 {
			return ErrInvalidGroupSize
		}
	}
	return nil
}

// GenerateSchedule lays out the group stage and the knockout tree. Game numbers run through
// the group matchdays first, then each knockout round, with the third-place game just
// before the final.
func GenerateSchedule(tournamentID uuid.UUID, groups []bracket.Group, teams []bracket.Team, opts ScheduleOptions) []bracket.Game {
	var games []bracket.Game
	number := 0
	next := func() int {
		number++
		return number
	}

	rosters := bracket.TeamIDsByGroup(teams)

	// Group stage, matchday by matchday across all groups
	daysByGroup := make([][][][2]int, len(groups))
	maxDays := 0
	for i, g := range groups {
		daysByGroup[i] = roundRobin(len(rosters[g.ID]))
		maxDays = max(maxDays, len(daysByGroup[i]))
	}

	legs := 1
	if opts.DoubleRoundRobin {
		legs = 2
	}
	for leg := 0; leg < legs; leg++ {
		for day := 0; day < maxDays; day++ {
			for i, g := range groups {
				if day >= len(daysByGroup[i]) {
					continue
				}
				roster := rosters[g.ID]
				for _, pair := range daysByGroup[i][day] {
					home, away := roster[pair[0]], roster[pair[1]]
					if leg == 1 {
						home, away = away, home
					}
					games = append(games, bracket.Game{
						ID:           uuid.New(),
						TournamentID: tournamentID,
						GameNumber:   next(),
						Stage:        bracket.StageGroup,
						RoundNumber:  leg*maxDays + day + 1,
						GroupID:      utils.Ptr(g.ID),
						Home:         bracket.TeamSlot{TeamID: home},
						Away:         bracket.TeamSlot{TeamID: away},
					})
				}
			}
		}
	}

	// First knockout round: group winners are seeds 0..n-1 and runners-up fill the rest, so
	// seed s meets the runner-up of its neighbouring group
	partner := func(i int) int {
		if len(groups) == 1 {
			return i
		}
		return i ^ 1
	}
	qualifierSlot := func(seed int) bracket.Slot {
		if seed < len(groups) {
			return bracket.GroupPositionRule{GroupID: groups[seed].ID, Position: 1}
		}
		winner := 2*len(groups) - 1 - seed
		return bracket.GroupPositionRule{GroupID: groups[partner(winner)].ID, Position: 2}
	}

	var previous []bracket.Game
	round := 1
	for _, pair := range generateRound1Pairs(2 * len(groups)) {
		previous = append(previous, bracket.Game{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Stage:        bracket.StageForRound(len(groups)),
			RoundNumber:  round,
			Home:         qualifierSlot(pair[0]),
			Away:         qualifierSlot(pair[1]),
		})
	}

	for {
		for i := range previous {
			previous[i].GameNumber = next()
		}
		games = append(games, previous...)
		if len(previous) == 1 {
			break
		}

		round++
		current := make([]bracket.Game, 0, len(previous)/2)
		for i := 0; i < len(previous); i += 2 {
			current = append(current, bracket.Game{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				Stage:        bracket.StageForRound(len(previous) / 2),
				RoundNumber:  round,
				Home:         bracket.TeamRule{SourceGameNumber: previous[i].GameNumber, WantsWinner: true},
				Away:         bracket.TeamRule{SourceGameNumber: previous[i+1].GameNumber, WantsWinner: true},
			})
		}

		if len(current) == 1 && opts.ThirdPlaceGame {
			games = append(games, bracket.Game{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				GameNumber:   next(),
				Stage:        bracket.StageThirdPlace,
				RoundNumber:  round,
				Home:         bracket.TeamRule{SourceGameNumber: previous[0].GameNumber, WantsWinner: false},
				Away:         bracket.TeamRule{SourceGameNumber: previous[1].GameNumber, WantsWinner: false},
			})
		}
		previous = current
	}

	return games
}

// CreateTournament stores a new tournament owned by the user on the context, with its groups,
// teams and complete schedule.
func (s *ScheduleService) CreateTournament(ctx context.Context, name string, groupInputs []GroupInput, opts ScheduleOptions) (uuid.UUID, error) {
	ownerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, ErrForbidden
	}
	if err := validateGroups(groupInputs); err != nil {
		return uuid.Nil, err
	}

	tournamentID := uuid.New()
	tournament := bracket.Tournament{
		ID:      tournamentID,
		OwnerID: ownerID,
		Name:    strings.TrimSpace(name),
		Status:  bracket.TournamentDraft,
	}

	var groups []bracket.Group
	var teams []bracket.Team
	for i, input := range groupInputs {
		g := bracket.Group{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         strings.TrimSpace(input.Name),
		}
		if g.Name == "" {
			g.Name = groupName(i)
		}
		groups = append(groups, g)

		for _, t := range input.Teams {
			teamName := strings.TrimSpace(t.Name)
			if teamName == "" {
				continue
			}
			short := strings.TrimSpace(t.ShortName)
			if short == "" {
				short = shortName(teamName)
			}
			teams = append(teams, bracket.Team{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				GroupID:      utils.Ptr(g.ID),
				Name:         teamName,
				ShortName:    short,
			})
		}
	}

	games := GenerateSchedule(tournamentID, groups, teams, opts)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := s.store.CreateGroups(ctx, tx, groups); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create groups: %w", err)
	}
	if err := s.store.CreateTeams(ctx, tx, teams); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create teams: %w", err)
	}
	if err := s.store.CreateGames(ctx, tx, games); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create games: %w", err)
	}

	return tournamentID, tx.Commit()
}
