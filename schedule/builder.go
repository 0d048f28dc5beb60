package schedule

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fieldline/stage-system/models"
)

var (
	// Configuration errors: the input is structurally infeasible and the
	// caller must correct it, not retry.
	ErrNotEnoughTeams      = errors.New("at least 2 unique teams are required")
	ErrAlliancesUnfillable = errors.New("not enough teams to fill both alliances of one match")
	ErrInvalidRounds       = errors.New("rounds must be a positive integer")
	ErrNegativeMinMatchGap = errors.New("min match gap must not be negative")

	// ErrNoEligibleTeam means the fallback ladder ran out of candidates for a
	// slot. The capacity derivation makes this unreachable; if it ever fires
	// the builder state is inconsistent and the schedule must be discarded.
	ErrNoEligibleTeam = errors.New("no eligible team for slot")
)

const (
	DefaultTeamsPerAlliance = 1
	DefaultMinMatchGap      = 4

	// Rest-gap contribution to the candidate score is capped so a long idle
	// streak cannot outweigh the under-scheduling term.
	restGapCap = 5

	surrogateBaseOffset    = 15
	surrogateRepeatPenalty = 4
	partnerRepeatPenalty   = 4
	opponentRepeatPenalty  = 3
)

// Params configures one schedule build. Use DefaultParams for the standard
// settings; Build takes every field literally.
type Params struct {
	TeamIDs          []string
	Rounds           int
	TeamsPerAlliance int
	MinMatchGap      int
	AllowSurrogates  bool
}

// DefaultParams returns Params with the documented defaults applied.
func DefaultParams(teamIDs []string, rounds int) Params {
	return Params{
		TeamIDs:          teamIDs,
		Rounds:           rounds,
		TeamsPerAlliance: DefaultTeamsPerAlliance,
		MinMatchGap:      DefaultMinMatchGap,
		AllowSurrogates:  true,
	}
}

// PlannedMatch is one match of the generated plan. MatchNumber is a global,
// monotonically increasing sequence across all rounds and is the basis for
// rest-gap computation.
type PlannedMatch struct {
	UID         string
	Round       int
	MatchNumber int
	Slots       []models.ScheduledSlot
}

// Plan is the full output of a build: the fixed station order, every match
// with its slot assignments, and the constraint-relaxation warnings.
type Plan struct {
	Stations []models.AllianceSlot
	Matches  []PlannedMatch
	Warnings []string
}

// Build turns a team list plus parameters into an ordered match plan. It is a
// pure function: identical inputs produce byte-identical plans.
func Build(params Params) (*Plan, error) {
	if params.TeamsPerAlliance <= 0 {
		params.TeamsPerAlliance = DefaultTeamsPerAlliance
	}
	if params.Rounds <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRounds, params.Rounds)
	}
	if params.MinMatchGap < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativeMinMatchGap, params.MinMatchGap)
	}

	teamIDs := uniqueSorted(params.TeamIDs)
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughTeams, len(teamIDs))
	}
	if len(teamIDs) < 2*params.TeamsPerAlliance {
		return nil, fmt.Errorf("%w: %d teams cannot fill %d stations",
			ErrAlliancesUnfillable, len(teamIDs), 2*params.TeamsPerAlliance)
	}

	b := newBuilder(params, teamIDs)
	for round := 1; round <= params.Rounds; round++ {
		if err := b.buildRound(round); err != nil {
			return nil, err
		}
	}
	b.analyze()

	return &Plan{
		Stations: b.stations,
		Matches:  b.matches,
		Warnings: b.warnings,
	}, nil
}

// buildStations produces the fixed station order RED1, BLUE1, RED2, BLUE2, …
// up to teamsPerAlliance pairs.
func buildStations(teamsPerAlliance int) []models.AllianceSlot {
	stations := make([]models.AllianceSlot, 0, 2*teamsPerAlliance)
	for n := 1; n <= teamsPerAlliance; n++ {
		stations = append(stations,
			models.AllianceSlot{Station: n, Color: models.ColorRed},
			models.AllianceSlot{Station: n, Color: models.ColorBlue},
		)
	}
	return stations
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
