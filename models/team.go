package models

// Team is an entry of the team catalog.
type Team struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Skill       int    `json:"skill" db:"skill"`
	HomeFieldID string `json:"home_field_id,omitempty" db:"home_field_id"`
}

// Field is a stadium. TeamID is empty for neutral venues.
type Field struct {
	ID     string `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	TeamID string `json:"team_id,omitempty" db:"team_id"`
}
