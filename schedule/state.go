package schedule

import (
	"fmt"

	"github.com/fieldline/stage-system/models"
)

// teamState carries the per-team mutable counters for one build. Keeping them
// on the builder instead of at package level keeps Build reentrant.
type teamState struct {
	id            string
	official      int
	surrogates    int
	lastMatch     int // global match number of the most recent appearance, 0 = never played
	colorCounts   map[models.AllianceColor]int
	stationCounts []int // indexed by position in the station order
	partners      map[string]int
	opponents     map[string]int
	roundUsage    int
	roundOfficial bool
}

type builder struct {
	params          Params
	stations        []models.AllianceSlot
	matchesPerRound int
	surrogateBudget int // surrogate slots available per round

	order   []string // team ids, lexicographic; the deterministic iteration order
	teams   map[string]*teamState
	matches []PlannedMatch

	warnings    []string
	matchNumber int
}

func newBuilder(params Params, teamIDs []string) *builder {
	stations := buildStations(params.TeamsPerAlliance)
	stationCount := len(stations)
	matchesPerRound := (len(teamIDs) + stationCount - 1) / stationCount

	b := &builder{
		params:          params,
		stations:        stations,
		matchesPerRound: matchesPerRound,
		surrogateBudget: matchesPerRound*stationCount - len(teamIDs),
		order:           teamIDs,
		teams:           make(map[string]*teamState, len(teamIDs)),
	}
	for _, id := range teamIDs {
		b.teams[id] = &teamState{
			id:            id,
			colorCounts:   make(map[models.AllianceColor]int, 2),
			stationCounts: make([]int, stationCount),
			partners:      make(map[string]int),
			opponents:     make(map[string]int),
		}
	}
	return b
}

func (b *builder) buildRound(round int) error {
	for _, ts := range b.teams {
		ts.roundUsage = 0
		ts.roundOfficial = false
	}
	primaryLeft := len(b.order)
	budget := b.surrogateBudget
	slotsLeft := b.matchesPerRound * len(b.stations)

	for m := 1; m <= b.matchesPerRound; m++ {
		b.matchNumber++
		match := PlannedMatch{
			UID:         fmt.Sprintf("R%dM%d", round, m),
			Round:       round,
			MatchNumber: b.matchNumber,
			Slots:       make([]models.ScheduledSlot, 0, len(b.stations)),
		}
		inMatch := make(map[string]bool, len(b.stations))

		for idx, station := range b.stations {
			p, err := b.pickTeam(match.UID, station, idx, match.Slots, inMatch, primaryLeft, slotsLeft, budget)
			if err != nil {
				return fmt.Errorf("match %s, station %s%d: %w", match.UID, station.Color, station.Station, err)
			}

			match.Slots = append(match.Slots, models.ScheduledSlot{
				TeamID:    p.id,
				Station:   station.Station,
				Color:     station.Color,
				Surrogate: p.surrogate,
			})
			inMatch[p.id] = true

			ts := b.teams[p.id]
			ts.lastMatch = b.matchNumber
			ts.roundUsage++
			ts.colorCounts[station.Color]++
			ts.stationCounts[idx]++
			if p.surrogate {
				ts.surrogates++
				budget--
			} else {
				ts.official++
				ts.roundOfficial = true
				primaryLeft--
			}
			slotsLeft--
		}

		b.recordPairings(match)
		b.matches = append(b.matches, match)
	}
	return nil
}

type pick struct {
	id        string
	surrogate bool
}

// pickTeam walks the fallback ladder for one slot: official respecting the
// rest gap, surrogate respecting the gap, official with the gap relaxed,
// surrogate with the gap relaxed. Surrogates are skipped entirely while the
// remaining primary-queue teams need every remaining slot of the round.
func (b *builder) pickTeam(uid string, station models.AllianceSlot, stationIdx int, placed []models.ScheduledSlot, inMatch map[string]bool, primaryLeft, slotsLeft, budget int) (pick, error) {
	forceOfficial := primaryLeft >= slotsLeft
	surrogatesOpen := b.params.AllowSurrogates && budget > 0 && !forceOfficial

	if id, ok := b.bestCandidate(false, true, station, stationIdx, placed, inMatch); ok {
		return pick{id: id}, nil
	}
	if surrogatesOpen {
		if id, ok := b.bestCandidate(true, true, station, stationIdx, placed, inMatch); ok {
			return pick{id: id, surrogate: true}, nil
		}
	}
	if id, ok := b.bestCandidate(false, false, station, stationIdx, placed, inMatch); ok {
		b.warnGapRelaxed(uid, id)
		return pick{id: id}, nil
	}
	if surrogatesOpen {
		if id, ok := b.bestCandidate(true, false, station, stationIdx, placed, inMatch); ok {
			b.warnGapRelaxed(uid, id)
			return pick{id: id, surrogate: true}, nil
		}
	}
	return pick{}, ErrNoEligibleTeam
}

// bestCandidate returns the highest-scoring eligible team for the slot. Teams
// are iterated in lexicographic id order and ties keep the earlier id, so the
// result is deterministic.
func (b *builder) bestCandidate(surrogate, enforceGap bool, station models.AllianceSlot, stationIdx int, placed []models.ScheduledSlot, inMatch map[string]bool) (string, bool) {
	var best string
	var bestScore int
	for _, id := range b.order {
		ts := b.teams[id]
		if inMatch[id] {
			continue
		}
		if surrogate {
			// A surrogate must already have its official appearance this
			// round, and at most one surrogate appearance per round per team.
			if ts.roundUsage != 1 {
				continue
			}
		} else if ts.roundOfficial {
			continue
		}
		if enforceGap && !b.gapOK(ts) {
			continue
		}
		score := b.score(ts, station, stationIdx, placed, surrogate)
		if best == "" || score > bestScore {
			best, bestScore = id, score
		}
	}
	return best, best != ""
}

func (b *builder) gapOK(ts *teamState) bool {
	return ts.lastMatch == 0 || b.matchNumber-ts.lastMatch-1 >= b.params.MinMatchGap
}

func (b *builder) score(ts *teamState, station models.AllianceSlot, stationIdx int, placed []models.ScheduledSlot, surrogate bool) int {
	// Under-scheduled teams first.
	score := 5 * (b.params.Rounds - ts.official)

	// More-rested teams next, capped. A team that has never played counts as
	// fully rested.
	gap := restGapCap
	if ts.lastMatch > 0 {
		gap = b.matchNumber - ts.lastMatch - 1
		if gap > restGapCap {
			gap = restGapCap
		}
	}
	score += 2 * gap

	// Prefer the color this team has played least.
	other := models.ColorBlue
	if station.Color == models.ColorBlue {
		other = models.ColorRed
	}
	score += ts.colorCounts[other] - ts.colorCounts[station.Color]

	// Prefer stations the team has occupied least, relative to its own
	// min-usage station.
	minUsage := ts.stationCounts[0]
	for _, c := range ts.stationCounts[1:] {
		if c < minUsage {
			minUsage = c
		}
	}
	score += minUsage - ts.stationCounts[stationIdx]

	// Penalize repeat pairings against everyone already placed in this match.
	for _, s := range placed {
		if s.Color == station.Color {
			score -= partnerRepeatPenalty * ts.partners[s.TeamID]
		} else {
			score -= opponentRepeatPenalty * ts.opponents[s.TeamID]
		}
	}

	// The flat offset keeps officials ahead of surrogates whenever the rest
	// of the score would tie.
	if surrogate {
		score -= surrogateBaseOffset + surrogateRepeatPenalty*ts.surrogates
	}
	return score
}

func (b *builder) recordPairings(match PlannedMatch) {
	for i := 0; i < len(match.Slots); i++ {
		for j := i + 1; j < len(match.Slots); j++ {
			a, c := match.Slots[i], match.Slots[j]
			if a.Color == c.Color {
				b.teams[a.TeamID].partners[c.TeamID]++
				b.teams[c.TeamID].partners[a.TeamID]++
			} else {
				b.teams[a.TeamID].opponents[c.TeamID]++
				b.teams[c.TeamID].opponents[a.TeamID]++
			}
		}
	}
}

func (b *builder) warnGapRelaxed(uid, teamID string) {
	b.warnings = append(b.warnings,
		fmt.Sprintf("match %s: rest gap relaxed for team %s", uid, teamID))
}
