package rankings

import (
	"testing"

	"github.com/fieldline/stage-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func team(id, name string, seed *int) *models.Team {
	return &models.Team{ID: id, Name: name, Seed: seed}
}

func playedMatch(uid string, num int, homeID, awayID string, home, away int) *models.Match {
	return &models.Match{
		UID:         uid,
		MatchNumber: num,
		Status:      models.MatchStatusCompleted,
		HomeTeamID:  &homeID,
		AwayTeamID:  &awayID,
		HomeScore:   &home,
		AwayScore:   &away,
	}
}

func byTeam(entries []*models.RankingEntry) map[string]*models.RankingEntry {
	out := make(map[string]*models.RankingEntry, len(entries))
	for _, e := range entries {
		out[e.TeamID] = e
	}
	return out
}

func TestComputeAggregatesAndBreaksTies(t *testing.T) {
	teams := []*models.Team{
		team("x", "Team X", nil),
		team("y", "Team Y", nil),
		team("z", "Team Z", nil),
	}

	pending := playedMatch("R1M3", 3, "x", "z", 10, 30)
	pending.Status = models.MatchStatusScheduled // result not in yet

	matches := []*models.Match{
		playedMatch("R1M1", 1, "x", "y", 50, 20),
		playedMatch("R1M2", 2, "y", "z", 40, 40),
		pending,
	}

	entries := Compute(teams, matches)
	require.Len(t, entries, 3)
	e := byTeam(entries)

	assert.Equal(t, 2, e["x"].RankingPoints)
	assert.Equal(t, 1, e["y"].RankingPoints)
	assert.Equal(t, 1, e["z"].RankingPoints)

	// Y and Z tie on ranking points; Y's higher total score breaks the tie.
	assert.Equal(t, 60, e["y"].TotalScore)
	assert.Equal(t, 40, e["z"].TotalScore)
	assert.Equal(t, 1, e["x"].Rank)
	assert.Equal(t, 2, e["y"].Rank)
	assert.Equal(t, 3, e["z"].Rank)

	assert.Equal(t, 1, e["x"].GamesPlayed, "scheduled match must not count")
	assert.InDelta(t, 0.0, e["x"].LoseRate, 1e-9)
	assert.InDelta(t, 0.5, e["y"].LoseRate, 1e-9)

	require.Len(t, e["y"].History, 2)
	assert.Equal(t, "Team X", e["y"].History[0].Opponent)
	assert.Equal(t, "loss", e["y"].History[0].Outcome)
	assert.Equal(t, "tie", e["y"].History[1].Outcome)
	assert.Equal(t, 40, e["y"].History[1].Scored)
}

func TestComputeRanksAreTotal(t *testing.T) {
	// Four teams with identical records: order falls through seed, then name,
	// then id; ranks must still be 1..N with no duplicates or gaps.
	seed2, seed1 := 2, 1
	teams := []*models.Team{
		team("d", "Delta", nil),
		team("a", "Alpha", &seed2),
		team("b", "Alpha", &seed1), // duplicate name, id breaks it elsewhere
		team("c", "Charlie", nil),
	}

	entries := Compute(teams, nil)
	require.Len(t, entries, 4)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
		assert.Zero(t, e.GamesPlayed)
		assert.Zero(t, e.LoseRate)
	}

	// Both seeded teams sort by seed ahead of name comparison with each
	// other; unseeded teams interleave by name.
	assert.Equal(t, "b", entries[0].TeamID)
	assert.Equal(t, "a", entries[1].TeamID)
	assert.Equal(t, "c", entries[2].TeamID)
	assert.Equal(t, "d", entries[3].TeamID)
}

func TestComputeSkipsUnresolvedMatches(t *testing.T) {
	teams := []*models.Team{
		team("a", "Alpha", nil),
		team("b", "Bravo", nil),
	}
	placeholder := "Winner of WSF1"
	score := 10
	incomplete := &models.Match{
		UID:             "WF",
		MatchNumber:     3,
		Status:          models.MatchStatusCompleted,
		HomePlaceholder: &placeholder,
		AwayPlaceholder: &placeholder,
		HomeScore:       &score,
		AwayScore:       &score,
	}

	entries := Compute(teams, []*models.Match{incomplete})
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Zero(t, e.GamesPlayed)
	}
}

func TestComputeEmptyStage(t *testing.T) {
	entries := Compute(nil, nil)
	assert.Empty(t, entries)
}

func TestComputeOpponentFallsBackToID(t *testing.T) {
	teams := []*models.Team{team("a", "Alpha", nil)}
	m := playedMatch("R1M1", 1, "a", "ghost", 20, 5)

	entries := Compute(teams, []*models.Match{m})
	require.Len(t, entries, 1)
	require.Len(t, entries[0].History, 1)
	// Opponent was unassigned from the stage; its raw id still identifies it.
	assert.Equal(t, "ghost", entries[0].History[0].Opponent)
	assert.Equal(t, 1, entries[0].GamesPlayed)
	assert.Equal(t, 2, entries[0].RankingPoints)
}
