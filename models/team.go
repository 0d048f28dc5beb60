package models

import "time"

type Team struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Seed is per-stage and only populated when the team was loaded through a
	// stage assignment. Used as a ranking tie-break, never as scheduling weight.
	Seed *int `json:"seed,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
