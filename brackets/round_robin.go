package brackets

import (
	"fmt"

	"github.com/fieldline/stage-system/models"
	"github.com/fieldline/stage-system/schedule"
)

type RoundRobinGenerator struct{}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate delegates pairing to the schedule builder and wraps the plan into
// stage matches, carrying the builder's constraint-relaxation warnings through.
func (g *RoundRobinGenerator) Generate(params GenerateParams) (*Bracket, error) {
	stage := params.Stage

	teamIDs := make([]string, 0, len(params.Teams))
	for _, team := range params.Teams {
		teamIDs = append(teamIDs, team.ID)
	}

	plan, err := schedule.Build(schedule.Params{
		TeamIDs:          teamIDs,
		Rounds:           stage.Rounds,
		TeamsPerAlliance: stage.TeamsPerAlliance,
		MinMatchGap:      stage.MinMatchGap,
		AllowSurrogates:  stage.AllowSurrogates,
	})
	if err != nil {
		return nil, fmt.Errorf("round robin schedule for stage %d: %w", stage.ID, err)
	}

	matches := make([]*models.Match, 0, len(plan.Matches))
	for _, pm := range plan.Matches {
		m := &models.Match{
			StageID:     stage.ID,
			UID:         pm.UID,
			Round:       pm.Round,
			MatchNumber: pm.MatchNumber,
			Status:      models.MatchStatusScheduled,
			Slots:       pm.Slots,
		}
		assignField(m, stage.Fields)

		// With one team per alliance the RED1/BLUE1 pair doubles as the
		// home/away pair the ranking engine aggregates over.
		if stage.TeamsPerAlliance == 1 && len(pm.Slots) == 2 {
			home, away := pm.Slots[0].TeamID, pm.Slots[1].TeamID
			m.HomeTeamID, m.AwayTeamID = &home, &away
		}
		matches = append(matches, m)
	}

	return &Bracket{Matches: matches, Warnings: plan.Warnings}, nil
}
