package models

// TeamStats is one row of the log. It only lives for the duration of a
// tournament and is recomputed from the schedule, never persisted.
type TeamStats struct {
	TeamID         string `json:"team_id"`
	Points         int    `json:"points"`
	GoalDifference int    `json:"goal_difference"`
	LogPosition    int    `json:"log_position"`
	AiLevel        int    `json:"ai_level"`
	HumanIndex     int    `json:"human_index"`

	Played       int `json:"played"`
	Won          int `json:"won"`
	Drawn        int `json:"drawn"`
	Lost         int `json:"lost"`
	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
}

// IsHuman reports whether a player controls the team.
func (s *TeamStats) IsHuman() bool {
	return s.HumanIndex != NoHuman
}

// Ties reports whether two rows are level on points and goal difference.
func (s *TeamStats) Ties(other *TeamStats) bool {
	return s.Points == other.Points && s.GoalDifference == other.GoalDifference
}
