package brackets

import (
	"errors"
	"fmt"

	"github.com/fieldline/stage-system/models"
)

// The double-elimination bracket is fixed to exactly 4 teams. There is no
// generalized N-team algorithm here: bye handling and seeding rules for other
// counts are undefined, so other counts are rejected outright.
const DoubleEliminationTeamCount = 4

var ErrDoubleElimTeamCount = errors.New("double elimination requires exactly 4 teams")

const (
	UIDWinnersSemi1 = "WSF1"
	UIDWinnersSemi2 = "WSF2"
	UIDWinnersFinal = "WF"
	UIDLosersRound1 = "LR1"
	UIDLosersFinal  = "LF"
	UIDGrandFinal   = "GF"
)

type DoubleEliminationGenerator struct{}

func (g *DoubleEliminationGenerator) Name() string {
	return "DoubleElimination"
}

// Generate builds the fixed 6-match bracket: semifinals seeded 1v4 and 2v3,
// a winners final and losers round fed by the semis, a losers final, and a
// grand final. Every placeholder slot carries a dependency record.
func (g *DoubleEliminationGenerator) Generate(params GenerateParams) (*Bracket, error) {
	if len(params.Teams) != DoubleEliminationTeamCount {
		return nil, fmt.Errorf("%w: got %d", ErrDoubleElimTeamCount, len(params.Teams))
	}
	stage := params.Stage

	seed := func(i int) *string {
		id := params.Teams[i].ID
		return &id
	}
	winnerOf := func(uid string) *string {
		label := "Winner of " + uid
		return &label
	}
	loserOf := func(uid string) *string {
		label := "Loser of " + uid
		return &label
	}

	matches := []*models.Match{
		{
			StageID: stage.ID, UID: UIDWinnersSemi1, Round: 1, MatchNumber: 1,
			Status: models.MatchStatusScheduled, HomeTeamID: seed(0), AwayTeamID: seed(3),
		},
		{
			StageID: stage.ID, UID: UIDWinnersSemi2, Round: 1, MatchNumber: 2,
			Status: models.MatchStatusScheduled, HomeTeamID: seed(1), AwayTeamID: seed(2),
		},
		{
			StageID: stage.ID, UID: UIDWinnersFinal, Round: 2, MatchNumber: 3,
			Status:          models.MatchStatusScheduled,
			HomePlaceholder: winnerOf(UIDWinnersSemi1), AwayPlaceholder: winnerOf(UIDWinnersSemi2),
		},
		{
			StageID: stage.ID, UID: UIDLosersRound1, Round: 2, MatchNumber: 4,
			Status:          models.MatchStatusScheduled,
			HomePlaceholder: loserOf(UIDWinnersSemi1), AwayPlaceholder: loserOf(UIDWinnersSemi2),
		},
		{
			StageID: stage.ID, UID: UIDLosersFinal, Round: 3, MatchNumber: 5,
			Status:          models.MatchStatusScheduled,
			HomePlaceholder: loserOf(UIDWinnersFinal), AwayPlaceholder: winnerOf(UIDLosersRound1),
		},
		{
			StageID: stage.ID, UID: UIDGrandFinal, Round: 4, MatchNumber: 6,
			Status:          models.MatchStatusScheduled,
			HomePlaceholder: winnerOf(UIDWinnersFinal), AwayPlaceholder: winnerOf(UIDLosersFinal),
		},
	}
	for _, m := range matches {
		assignField(m, stage.Fields)
	}

	dependencies := []Dependency{
		{TargetUID: UIDWinnersFinal, TargetSide: models.SideHome, SourceUID: UIDWinnersSemi1, Outcome: models.OutcomeWinner},
		{TargetUID: UIDWinnersFinal, TargetSide: models.SideAway, SourceUID: UIDWinnersSemi2, Outcome: models.OutcomeWinner},
		{TargetUID: UIDLosersRound1, TargetSide: models.SideHome, SourceUID: UIDWinnersSemi1, Outcome: models.OutcomeLoser},
		{TargetUID: UIDLosersRound1, TargetSide: models.SideAway, SourceUID: UIDWinnersSemi2, Outcome: models.OutcomeLoser},
		{TargetUID: UIDLosersFinal, TargetSide: models.SideHome, SourceUID: UIDWinnersFinal, Outcome: models.OutcomeLoser},
		{TargetUID: UIDLosersFinal, TargetSide: models.SideAway, SourceUID: UIDLosersRound1, Outcome: models.OutcomeWinner},
		{TargetUID: UIDGrandFinal, TargetSide: models.SideHome, SourceUID: UIDWinnersFinal, Outcome: models.OutcomeWinner},
		{TargetUID: UIDGrandFinal, TargetSide: models.SideAway, SourceUID: UIDLosersFinal, Outcome: models.OutcomeWinner},
	}

	return &Bracket{Matches: matches, Dependencies: dependencies}, nil
}
