package schedule

import (
	"fmt"

	"github.com/fieldline/stage-system/models"
)

// analyze appends the whole-schedule fairness warnings after all rounds are
// built: repeated pairings, color imbalance, station usage spread, and
// surrogate appearances. These are informational, never errors.
func (b *builder) analyze() {
	for _, id := range b.order {
		ts := b.teams[id]
		for _, otherID := range b.order {
			if otherID <= id {
				continue
			}
			if n := ts.partners[otherID]; n > 1 {
				b.warnings = append(b.warnings,
					fmt.Sprintf("teams %s and %s partnered %d times", id, otherID, n))
			}
			if n := ts.opponents[otherID]; n > 1 {
				b.warnings = append(b.warnings,
					fmt.Sprintf("teams %s and %s opposed %d times", id, otherID, n))
			}
		}
	}

	for _, id := range b.order {
		ts := b.teams[id]

		red, blue := ts.colorCounts[models.ColorRed], ts.colorCounts[models.ColorBlue]
		if diff := red - blue; diff > 1 || diff < -1 {
			b.warnings = append(b.warnings,
				fmt.Sprintf("team %s color split is uneven: %d red / %d blue", id, red, blue))
		}

		minUsage, maxUsage := ts.stationCounts[0], ts.stationCounts[0]
		for _, c := range ts.stationCounts[1:] {
			if c < minUsage {
				minUsage = c
			}
			if c > maxUsage {
				maxUsage = c
			}
		}
		if maxUsage-minUsage > 1 {
			b.warnings = append(b.warnings,
				fmt.Sprintf("team %s station usage spread is %d", id, maxUsage-minUsage))
		}

		if ts.surrogates > 0 {
			b.warnings = append(b.warnings,
				fmt.Sprintf("team %s filled %d surrogate slot(s)", id, ts.surrogates))
		}
	}
}
