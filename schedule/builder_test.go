package schedule

import (
	"strings"
	"testing"

	"github.com/fieldline/stage-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func officialCounts(t *testing.T, plan *Plan) map[string]int {
	t.Helper()
	counts := make(map[string]int)
	for _, m := range plan.Matches {
		seen := make(map[string]bool)
		for _, s := range m.Slots {
			require.Falsef(t, seen[s.TeamID], "team %s appears twice in match %s", s.TeamID, m.UID)
			seen[s.TeamID] = true
			if !s.Surrogate {
				counts[s.TeamID]++
			}
		}
	}
	return counts
}

func surrogateCounts(plan *Plan) map[string]int {
	counts := make(map[string]int)
	for _, m := range plan.Matches {
		for _, s := range m.Slots {
			if s.Surrogate {
				counts[s.TeamID]++
			}
		}
	}
	return counts
}

func hasWarningContaining(plan *Plan, substr string) bool {
	for _, w := range plan.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestBuildRejectsInfeasibleInput(t *testing.T) {
	_, err := Build(DefaultParams([]string{"410"}, 2))
	require.ErrorIs(t, err, ErrNotEnoughTeams)

	_, err = Build(DefaultParams([]string{"410", "410", "410"}, 2))
	require.ErrorIs(t, err, ErrNotEnoughTeams, "duplicate ids must collapse to one team")

	params := DefaultParams([]string{"101", "102", "103"}, 2)
	params.TeamsPerAlliance = 2
	_, err = Build(params)
	require.ErrorIs(t, err, ErrAlliancesUnfillable)

	_, err = Build(DefaultParams([]string{"101", "102"}, 0))
	require.ErrorIs(t, err, ErrInvalidRounds)
}

func TestBuildFourTeamsThreeRounds(t *testing.T) {
	params := Params{
		TeamIDs:          []string{"101", "102", "103", "104"},
		Rounds:           3,
		TeamsPerAlliance: 1,
		MinMatchGap:      1,
		AllowSurrogates:  true,
	}
	plan, err := Build(params)
	require.NoError(t, err)

	require.Equal(t, []models.AllianceSlot{
		{Station: 1, Color: models.ColorRed},
		{Station: 1, Color: models.ColorBlue},
	}, plan.Stations)

	require.Len(t, plan.Matches, 6)
	perRound := make(map[int]int)
	for i, m := range plan.Matches {
		assert.Equal(t, i+1, m.MatchNumber, "match numbers form a global sequence")
		assert.Len(t, m.Slots, 2)
		perRound[m.Round]++
	}
	for round := 1; round <= 3; round++ {
		assert.Equalf(t, 2, perRound[round], "round %d", round)
	}

	officials := officialCounts(t, plan)
	for _, id := range params.TeamIDs {
		assert.Equalf(t, 3, officials[id], "team %s official appearances", id)
	}
	assert.Empty(t, surrogateCounts(plan), "4 teams divide capacity evenly")
}

func TestBuildFiveTeamsTwoRoundsUsesSurrogates(t *testing.T) {
	plan, err := Build(DefaultParams([]string{"201", "202", "203", "204", "205"}, 2))
	require.NoError(t, err)

	require.Len(t, plan.Matches, 6, "3 matches per round")

	for round := 1; round <= 2; round++ {
		official, surrogate := 0, 0
		for _, m := range plan.Matches {
			if m.Round != round {
				continue
			}
			for _, s := range m.Slots {
				if s.Surrogate {
					surrogate++
				} else {
					official++
				}
			}
		}
		assert.Equalf(t, 5, official, "round %d official slots", round)
		assert.Equalf(t, 1, surrogate, "round %d surrogate slots", round)
	}

	officials := officialCounts(t, plan)
	for team, n := range officials {
		assert.Equalf(t, 2, n, "team %s official appearances", team)
	}

	surrogates := surrogateCounts(plan)
	require.NotEmpty(t, surrogates)
	for team := range surrogates {
		assert.Truef(t, hasWarningContaining(plan, "team "+team+" filled"),
			"warnings must name surrogate team %s: %v", team, plan.Warnings)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	first, err := Build(DefaultParams([]string{"301", "302", "303", "304", "305", "306", "307"}, 4))
	require.NoError(t, err)

	second, err := Build(DefaultParams([]string{"301", "302", "303", "304", "305", "306", "307"}, 4))
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Input order must not matter either: the builder works off the unique
	// sorted team set.
	shuffled, err := Build(DefaultParams([]string{"305", "301", "307", "303", "306", "302", "304"}, 4))
	require.NoError(t, err)
	require.Equal(t, first, shuffled)
}

func TestBuildRespectsRestGap(t *testing.T) {
	params := DefaultParams([]string{"401", "402", "403", "404", "405", "406", "407", "408"}, 2)
	params.MinMatchGap = 2
	plan, err := Build(params)
	require.NoError(t, err)

	assert.False(t, hasWarningContaining(plan, "rest gap relaxed"), "warnings: %v", plan.Warnings)

	lastMatch := make(map[string]int)
	for _, m := range plan.Matches {
		for _, s := range m.Slots {
			if prev, ok := lastMatch[s.TeamID]; ok {
				gap := m.MatchNumber - prev - 1
				assert.GreaterOrEqualf(t, gap, 2, "team %s rest gap between matches %d and %d", s.TeamID, prev, m.MatchNumber)
			}
			lastMatch[s.TeamID] = m.MatchNumber
		}
	}
}

func TestBuildTwoTeamAlliances(t *testing.T) {
	params := DefaultParams([]string{"501", "502", "503", "504", "505", "506"}, 2)
	params.TeamsPerAlliance = 2
	params.MinMatchGap = 0
	plan, err := Build(params)
	require.NoError(t, err)

	require.Equal(t, []models.AllianceSlot{
		{Station: 1, Color: models.ColorRed},
		{Station: 1, Color: models.ColorBlue},
		{Station: 2, Color: models.ColorRed},
		{Station: 2, Color: models.ColorBlue},
	}, plan.Stations)

	require.Len(t, plan.Matches, 4, "ceil(6/4) matches per round, 2 rounds")
	for _, m := range plan.Matches {
		assert.Len(t, m.Slots, 4)
	}

	officials := officialCounts(t, plan)
	for team, n := range officials {
		assert.Equalf(t, 2, n, "team %s official appearances", team)
	}

	total := 0
	for _, n := range surrogateCounts(plan) {
		total += n
	}
	assert.Equal(t, 4, total, "2 surrogate slots per round")
}

func TestBuildFailsWhenSurrogatesDisabledAndCapacityUneven(t *testing.T) {
	params := DefaultParams([]string{"601", "602", "603", "604", "605"}, 1)
	params.AllowSurrogates = false
	_, err := Build(params)
	require.ErrorIs(t, err, ErrNoEligibleTeam)
}
