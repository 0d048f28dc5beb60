package brackets

import (
	"errors"
	"fmt"

	"github.com/fieldline/stage-system/models"
)

var ErrUnsupportedFormat = errors.New("unsupported stage format")

type GenerateParams struct {
	Stage *models.Stage
	// Teams in caller-provided seed order. Order matters for elimination
	// brackets; for round robin it is irrelevant.
	Teams []*models.Team
}

// Dependency links two generated matches by UID. Database row ids do not
// exist until the bracket is persisted, so generators can only speak UIDs.
type Dependency struct {
	TargetUID  string
	TargetSide models.DependencySide
	SourceUID  string
	Outcome    models.MatchOutcome
}

// Bracket is an immutable match plan handed to the persistence layer.
type Bracket struct {
	Matches      []*models.Match
	Dependencies []Dependency
	Warnings     []string
}

type Generator interface {
	Generate(params GenerateParams) (*Bracket, error)
	Name() string
}

// ForFormat maps a stage format to its generator. The format set is closed:
// an unknown value is a configuration error, never a silent fallback.
func ForFormat(format models.StageFormat) (Generator, error) {
	switch format {
	case models.StageFormatRoundRobin:
		return &RoundRobinGenerator{}, nil
	case models.StageFormatDoubleElimination:
		return &DoubleEliminationGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func assignField(m *models.Match, fields int) {
	if fields <= 0 {
		return
	}
	// Rotating field assignment is presentation-only, independent of team
	// fairness.
	field := (m.MatchNumber-1)%fields + 1
	m.FieldNumber = &field
}
