package brackets

import (
	"errors"
	"fmt"

	"github.com/fieldline/stage-system/models"
)

var (
	ErrScoresMissing       = errors.New("both scores are required to complete a match")
	ErrDrawNotAllowed      = errors.New("matches cannot end in a draw for advancement stages")
	ErrParticipantsUnknown = errors.New("match participants are not resolved yet")
)

// DependencyGraph indexes a stage's dependencies by source match row id, so
// each completion looks up its downstream targets directly instead of
// re-filtering the full dependency list.
type DependencyGraph map[int][]models.MatchDependency

func BuildGraph(deps []models.MatchDependency) DependencyGraph {
	g := make(DependencyGraph, len(deps))
	for _, d := range deps {
		g[d.SourceMatchID] = append(g[d.SourceMatchID], d)
	}
	return g
}

// Outcome resolves the winner and loser of a match with both scores present.
// A draw cannot be resolved into a single winner and is a domain error.
func Outcome(m *models.Match) (winnerID, loserID string, err error) {
	if m.HomeTeamID == nil || m.AwayTeamID == nil {
		return "", "", fmt.Errorf("%w (match %s)", ErrParticipantsUnknown, m.UID)
	}
	if m.HomeScore == nil || m.AwayScore == nil {
		return "", "", fmt.Errorf("%w (match %s)", ErrScoresMissing, m.UID)
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return *m.HomeTeamID, *m.AwayTeamID, nil
	case *m.HomeScore < *m.AwayScore:
		return *m.AwayTeamID, *m.HomeTeamID, nil
	default:
		return "", "", fmt.Errorf("%w (match %s)", ErrDrawNotAllowed, m.UID)
	}
}

// Propagate applies every dependency sourced at the completed match: the
// target side's team is set to the source's winner or loser and the
// placeholder is cleared. Targets that are already completed are never
// overwritten, which makes re-propagation a no-op and protects manually
// corrected downstream matches. The modified matches are returned.
func (g DependencyGraph) Propagate(completed *models.Match, matches map[int]*models.Match) ([]*models.Match, error) {
	winnerID, loserID, err := Outcome(completed)
	if err != nil {
		return nil, err
	}

	changed := make([]*models.Match, 0, 2)
	seen := make(map[int]bool)
	for _, dep := range g[completed.ID] {
		target, ok := matches[dep.TargetMatchID]
		if !ok || target.Status == models.MatchStatusCompleted {
			continue
		}

		teamID := winnerID
		if dep.Outcome == models.OutcomeLoser {
			teamID = loserID
		}
		assigned := teamID

		switch dep.TargetSide {
		case models.SideHome:
			target.HomeTeamID = &assigned
			target.HomePlaceholder = nil
		case models.SideAway:
			target.AwayTeamID = &assigned
			target.AwayPlaceholder = nil
		}

		if !seen[target.ID] {
			seen[target.ID] = true
			changed = append(changed, target)
		}
	}
	return changed, nil
}
