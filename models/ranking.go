package models

import "time"

// MatchHistoryEntry records one played match from a single team's point of view.
type MatchHistoryEntry struct {
	MatchUID string `json:"match_uid"`
	Opponent string `json:"opponent"`
	Scored   int    `json:"scored"`
	Conceded int    `json:"conceded"`
	Outcome  string `json:"outcome"` // "win", "loss" or "tie"
}

// RankingEntry is a per-team aggregate over a stage. Entries are always
// recomputed from scratch and replaced wholesale, never patched row by row.
type RankingEntry struct {
	ID            int       `json:"id" db:"id"`
	StageID       int       `json:"stage_id" db:"stage_id"`
	TeamID        string    `json:"team_id" db:"team_id"`
	TeamName      string    `json:"team_name" db:"team_name"`
	Rank          int       `json:"rank" db:"rank"`
	GamesPlayed   int       `json:"games_played" db:"games_played"`
	Wins          int       `json:"wins" db:"wins"`
	Losses        int       `json:"losses" db:"losses"`
	Ties          int       `json:"ties" db:"ties"`
	RankingPoints int       `json:"ranking_points" db:"ranking_points"`
	TotalScore    int       `json:"total_score" db:"total_score"`
	TotalAgainst  int       `json:"total_against" db:"total_against"`
	LoseRate      float64   `json:"lose_rate" db:"lose_rate"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	History []MatchHistoryEntry `json:"match_history" db:"-"`
}
