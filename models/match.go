package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCanceled  MatchStatus = "canceled"
)

type AllianceColor string

const (
	ColorRed  AllianceColor = "red"
	ColorBlue AllianceColor = "blue"
)

// AllianceSlot is a (station, color) position a team occupies for one match.
// Stations are numbered from 1 and fixed for the lifetime of a schedule.
type AllianceSlot struct {
	Station int           `json:"station"`
	Color   AllianceColor `json:"color"`
}

// ScheduledSlot assigns one team to one alliance slot within one match.
// Surrogate slots fill capacity and do not count toward official appearances.
type ScheduledSlot struct {
	MatchID   int           `json:"match_id,omitempty" db:"match_id"`
	TeamID    string        `json:"team_id" db:"team_id"`
	Station   int           `json:"station" db:"station"`
	Color     AllianceColor `json:"color" db:"color"`
	Surrogate bool          `json:"is_surrogate" db:"is_surrogate"`
}

// Match is one scheduled or played match of a stage. UID is the stable
// in-stage identity assigned at generation time (e.g. "R2M3", "WF") and is
// what placeholder labels refer to; ID is the database row id.
type Match struct {
	ID          int         `json:"id" db:"id"`
	StageID     int         `json:"stage_id" db:"stage_id"`
	UID         string      `json:"uid" db:"uid"`
	Round       int         `json:"round" db:"round"`
	MatchNumber int         `json:"match_number" db:"match_number"`
	FieldNumber *int        `json:"field_number,omitempty" db:"field_number"`
	Status      MatchStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	HomeTeamID      *string `json:"home_team_id,omitempty" db:"home_team_id"`
	AwayTeamID      *string `json:"away_team_id,omitempty" db:"away_team_id"`
	HomePlaceholder *string `json:"home_placeholder,omitempty" db:"home_placeholder"`
	AwayPlaceholder *string `json:"away_placeholder,omitempty" db:"away_placeholder"`

	HomeScore    *int    `json:"home_score,omitempty" db:"home_score"`
	AwayScore    *int    `json:"away_score,omitempty" db:"away_score"`
	WinnerTeamID *string `json:"winner_team_id,omitempty" db:"winner_team_id"`

	// Full alliance detail for schedule-built matches. Empty for bracket
	// matches, which only use the home/away pair.
	Slots []ScheduledSlot `json:"slots,omitempty" db:"-"`
}

type DependencySide string

const (
	SideHome DependencySide = "home"
	SideAway DependencySide = "away"
)

type MatchOutcome string

const (
	OutcomeWinner MatchOutcome = "winner"
	OutcomeLoser  MatchOutcome = "loser"
)

// MatchDependency declares that a target match's participant on one side is
// determined by the named outcome of a source match. Dependencies form a DAG.
type MatchDependency struct {
	ID            int            `json:"id" db:"id"`
	StageID       int            `json:"stage_id" db:"stage_id"`
	TargetMatchID int            `json:"target_match_id" db:"target_match_id"`
	TargetSide    DependencySide `json:"target_side" db:"target_side"`
	SourceMatchID int            `json:"source_match_id" db:"source_match_id"`
	Outcome       MatchOutcome   `json:"outcome" db:"outcome"`
}
