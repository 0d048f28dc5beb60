// Package rankings aggregates completed match results into ordered standings.
// Standings are always recomputed from scratch over the full match set of a
// stage; there is no incremental update path.
package rankings

import (
	"sort"

	"github.com/fieldline/stage-system/models"
)

const (
	winPoints = 2
	tiePoints = 1
)

// Compute produces one RankingEntry per assigned team, fully ordered, with
// ranks 1..N and no gaps or ties in the emitted rank field. Matches that are
// not completed, or that are missing a score or a concrete team on either
// side, are skipped.
func Compute(teams []*models.Team, matches []*models.Match) []*models.RankingEntry {
	entries := make(map[string]*models.RankingEntry, len(teams))
	seeds := make(map[string]*int, len(teams))
	list := make([]*models.RankingEntry, 0, len(teams))
	for _, team := range teams {
		e := &models.RankingEntry{
			TeamID:   team.ID,
			TeamName: team.Name,
			History:  []models.MatchHistoryEntry{},
		}
		entries[team.ID] = e
		seeds[team.ID] = team.Seed
		list = append(list, e)
	}

	ordered := make([]*models.Match, len(matches))
	copy(ordered, matches)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].MatchNumber < ordered[j].MatchNumber
	})

	for _, m := range ordered {
		if !qualifies(m) {
			continue
		}
		record(entries, m, *m.HomeTeamID, *m.AwayTeamID, *m.HomeScore, *m.AwayScore, m.AwayPlaceholder)
		record(entries, m, *m.AwayTeamID, *m.HomeTeamID, *m.AwayScore, *m.HomeScore, m.HomePlaceholder)
	}

	for _, e := range list {
		e.RankingPoints = winPoints*e.Wins + tiePoints*e.Ties
		if e.GamesPlayed > 0 {
			e.LoseRate = float64(e.Losses) / float64(e.GamesPlayed)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		return less(list[i], list[j], seeds)
	})
	for i, e := range list {
		e.Rank = i + 1
	}
	return list
}

func qualifies(m *models.Match) bool {
	return m.Status == models.MatchStatusCompleted &&
		m.HomeScore != nil && m.AwayScore != nil &&
		m.HomeTeamID != nil && m.AwayTeamID != nil
}

func record(entries map[string]*models.RankingEntry, m *models.Match, teamID, opponentID string, scored, conceded int, opponentPlaceholder *string) {
	e, ok := entries[teamID]
	if !ok {
		// Result references a team no longer assigned to the stage.
		return
	}

	e.GamesPlayed++
	e.TotalScore += scored
	e.TotalAgainst += conceded

	outcome := "tie"
	switch {
	case scored > conceded:
		e.Wins++
		outcome = "win"
	case scored < conceded:
		e.Losses++
		outcome = "loss"
	default:
		e.Ties++
	}

	e.History = append(e.History, models.MatchHistoryEntry{
		MatchUID: m.UID,
		Opponent: opponentLabel(entries, opponentID, opponentPlaceholder),
		Scored:   scored,
		Conceded: conceded,
		Outcome:  outcome,
	})
}

func opponentLabel(entries map[string]*models.RankingEntry, opponentID string, placeholder *string) string {
	if opponent, ok := entries[opponentID]; ok {
		return opponent.TeamName
	}
	if opponentID != "" {
		return opponentID
	}
	if placeholder != nil {
		return *placeholder
	}
	return "unknown"
}

// less implements the total standings order: ranking points, total score,
// lose rate, seed (only when both sides have one), team name, and finally
// team id so no two distinct teams ever compare equal.
func less(a, b *models.RankingEntry, seeds map[string]*int) bool {
	if a.RankingPoints != b.RankingPoints {
		return a.RankingPoints > b.RankingPoints
	}
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	if a.LoseRate != b.LoseRate {
		return a.LoseRate < b.LoseRate
	}
	if sa, sb := seeds[a.TeamID], seeds[b.TeamID]; sa != nil && sb != nil && *sa != *sb {
		return *sa < *sb
	}
	if a.TeamName != b.TeamName {
		return a.TeamName < b.TeamName
	}
	return a.TeamID < b.TeamID
}
