package brackets

import (
	"testing"

	"github.com/fieldline/stage-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTeams(ids ...string) []*models.Team {
	teams := make([]*models.Team, 0, len(ids))
	for i, id := range ids {
		seed := i + 1
		teams = append(teams, &models.Team{ID: id, Name: "Team " + id, Seed: &seed})
	}
	return teams
}

// persistBracket mimics what the stage service does after generation: assign
// row ids in order and resolve UID-level dependencies to row-id records.
func persistBracket(t *testing.T, br *Bracket) (map[string]*models.Match, map[int]*models.Match, DependencyGraph) {
	t.Helper()
	byUID := make(map[string]*models.Match, len(br.Matches))
	byID := make(map[int]*models.Match, len(br.Matches))
	for i, m := range br.Matches {
		m.ID = i + 1
		byUID[m.UID] = m
		byID[m.ID] = m
	}
	deps := make([]models.MatchDependency, 0, len(br.Dependencies))
	for _, d := range br.Dependencies {
		deps = append(deps, models.MatchDependency{
			StageID:       br.Matches[0].StageID,
			TargetMatchID: byUID[d.TargetUID].ID,
			TargetSide:    d.TargetSide,
			SourceMatchID: byUID[d.SourceUID].ID,
			Outcome:       d.Outcome,
		})
	}
	return byUID, byID, BuildGraph(deps)
}

func completeMatch(m *models.Match, home, away int) {
	m.HomeScore, m.AwayScore = &home, &away
	m.Status = models.MatchStatusCompleted
}

func TestDoubleEliminationRejectsWrongTeamCount(t *testing.T) {
	gen := &DoubleEliminationGenerator{}
	for _, n := range []int{0, 2, 3, 5, 8} {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = string(rune('a' + i))
		}
		_, err := gen.Generate(GenerateParams{Stage: &models.Stage{ID: 1}, Teams: seedTeams(ids...)})
		require.ErrorIsf(t, err, ErrDoubleElimTeamCount, "team count %d", n)
	}
}

func TestDoubleEliminationStructure(t *testing.T) {
	stage := &models.Stage{ID: 7, Format: models.StageFormatDoubleElimination, Fields: 2}
	br, err := (&DoubleEliminationGenerator{}).Generate(GenerateParams{
		Stage: stage,
		Teams: seedTeams("A", "B", "C", "D"),
	})
	require.NoError(t, err)

	require.Len(t, br.Matches, 6)
	require.Len(t, br.Dependencies, 8)

	byUID, _, _ := persistBracket(t, br)

	wsf1 := byUID[UIDWinnersSemi1]
	require.NotNil(t, wsf1)
	assert.Equal(t, "A", *wsf1.HomeTeamID)
	assert.Equal(t, "D", *wsf1.AwayTeamID)

	wsf2 := byUID[UIDWinnersSemi2]
	require.NotNil(t, wsf2)
	assert.Equal(t, "B", *wsf2.HomeTeamID)
	assert.Equal(t, "C", *wsf2.AwayTeamID)

	for _, uid := range []string{UIDWinnersFinal, UIDLosersRound1, UIDLosersFinal, UIDGrandFinal} {
		m := byUID[uid]
		require.NotNilf(t, m, "match %s", uid)
		assert.Nilf(t, m.HomeTeamID, "match %s home must be a placeholder", uid)
		assert.Nilf(t, m.AwayTeamID, "match %s away must be a placeholder", uid)
		assert.NotNilf(t, m.HomePlaceholder, "match %s", uid)
		assert.NotNilf(t, m.AwayPlaceholder, "match %s", uid)
	}

	assert.Equal(t, "Loser of WF", *byUID[UIDLosersFinal].HomePlaceholder)
	assert.Equal(t, "Winner of LR1", *byUID[UIDLosersFinal].AwayPlaceholder)
	assert.Equal(t, "Winner of WF", *byUID[UIDGrandFinal].HomePlaceholder)
	assert.Equal(t, "Winner of LF", *byUID[UIDGrandFinal].AwayPlaceholder)
}

func TestPropagateSemifinalResult(t *testing.T) {
	stage := &models.Stage{ID: 7, Format: models.StageFormatDoubleElimination}
	br, err := (&DoubleEliminationGenerator{}).Generate(GenerateParams{
		Stage: stage,
		Teams: seedTeams("A", "B", "C", "D"),
	})
	require.NoError(t, err)
	byUID, byID, graph := persistBracket(t, br)

	wsf1 := byUID[UIDWinnersSemi1]
	completeMatch(wsf1, 42, 17) // A beats D

	changed, err := graph.Propagate(wsf1, byID)
	require.NoError(t, err)
	require.Len(t, changed, 2)

	wf, lr1 := byUID[UIDWinnersFinal], byUID[UIDLosersRound1]
	require.NotNil(t, wf.HomeTeamID)
	assert.Equal(t, "A", *wf.HomeTeamID)
	assert.Nil(t, wf.HomePlaceholder)
	require.NotNil(t, lr1.HomeTeamID)
	assert.Equal(t, "D", *lr1.HomeTeamID)
	assert.Nil(t, lr1.HomePlaceholder)

	// The second semifinal has not been played, so the away sides stay
	// unresolved placeholders.
	assert.Nil(t, wf.AwayTeamID)
	assert.NotNil(t, wf.AwayPlaceholder)
	assert.Nil(t, lr1.AwayTeamID)
	assert.NotNil(t, lr1.AwayPlaceholder)
}

func TestPropagateIsIdempotent(t *testing.T) {
	stage := &models.Stage{ID: 7, Format: models.StageFormatDoubleElimination}
	br, err := (&DoubleEliminationGenerator{}).Generate(GenerateParams{
		Stage: stage,
		Teams: seedTeams("A", "B", "C", "D"),
	})
	require.NoError(t, err)
	byUID, byID, graph := persistBracket(t, br)

	wsf1 := byUID[UIDWinnersSemi1]
	completeMatch(wsf1, 30, 10)
	_, err = graph.Propagate(wsf1, byID)
	require.NoError(t, err)

	_, err = graph.Propagate(wsf1, byID)
	require.NoError(t, err)
	assert.Equal(t, "A", *byUID[UIDWinnersFinal].HomeTeamID)
	assert.Equal(t, "D", *byUID[UIDLosersRound1].HomeTeamID)
}

func TestPropagateNeverOverwritesCompletedTarget(t *testing.T) {
	stage := &models.Stage{ID: 7, Format: models.StageFormatDoubleElimination}
	br, err := (&DoubleEliminationGenerator{}).Generate(GenerateParams{
		Stage: stage,
		Teams: seedTeams("A", "B", "C", "D"),
	})
	require.NoError(t, err)
	byUID, byID, graph := persistBracket(t, br)

	// A downstream match that was corrected by hand and completed must keep
	// its participants even if the source result is re-propagated.
	corrected := "C"
	lr1 := byUID[UIDLosersRound1]
	lr1.HomeTeamID = &corrected
	lr1.HomePlaceholder = nil
	completeMatch(lr1, 12, 8)

	wsf1 := byUID[UIDWinnersSemi1]
	completeMatch(wsf1, 30, 10)
	changed, err := graph.Propagate(wsf1, byID)
	require.NoError(t, err)

	assert.Equal(t, "C", *lr1.HomeTeamID)
	for _, m := range changed {
		assert.NotEqual(t, lr1.ID, m.ID)
	}
}

func TestOutcomeErrors(t *testing.T) {
	home, away := "A", "D"
	score := 20

	m := &models.Match{UID: "WSF1", HomeTeamID: &home, AwayTeamID: &away}
	_, _, err := Outcome(m)
	require.ErrorIs(t, err, ErrScoresMissing)

	m.HomeScore, m.AwayScore = &score, &score
	_, _, err = Outcome(m)
	require.ErrorIs(t, err, ErrDrawNotAllowed)

	unresolved := &models.Match{UID: "WF"}
	_, _, err = Outcome(unresolved)
	require.ErrorIs(t, err, ErrParticipantsUnknown)
}

func TestForFormat(t *testing.T) {
	gen, err := ForFormat(models.StageFormatRoundRobin)
	require.NoError(t, err)
	assert.Equal(t, "RoundRobin", gen.Name())

	gen, err = ForFormat(models.StageFormatDoubleElimination)
	require.NoError(t, err)
	assert.Equal(t, "DoubleElimination", gen.Name())

	_, err = ForFormat(models.StageFormat("swiss"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
