package models

import "time"

// StageFormat enumerates the supported bracket shapes. The set is closed:
// adding a format means adding a generator for it, there is no fallback.
type StageFormat string

const (
	StageFormatRoundRobin        StageFormat = "round_robin"
	StageFormatDoubleElimination StageFormat = "double_elimination"
)

func (f StageFormat) Valid() bool {
	switch f {
	case StageFormatRoundRobin, StageFormatDoubleElimination:
		return true
	}
	return false
}

// Stage is one phase of a competition: a set of teams, a format, and the
// scheduling parameters used when its matches are generated.
type Stage struct {
	ID               int         `json:"id" db:"id"`
	Name             string      `json:"name" db:"name"`
	Format           StageFormat `json:"format" db:"format"`
	Rounds           int         `json:"rounds" db:"rounds"`
	TeamsPerAlliance int         `json:"teams_per_alliance" db:"teams_per_alliance"`
	MinMatchGap      int         `json:"min_match_gap" db:"min_match_gap"`
	AllowSurrogates  bool        `json:"allow_surrogates" db:"allow_surrogates"`
	Fields           int         `json:"fields" db:"fields"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`

	// Optional linked data, populated by the service layer.
	Teams    []Team         `json:"teams,omitempty" db:"-"`
	Matches  []Match        `json:"matches,omitempty" db:"-"`
	Rankings []RankingEntry `json:"rankings,omitempty" db:"-"`
}
