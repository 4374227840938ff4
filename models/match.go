package models

import "fmt"

const (
	NoScore  = -1
	NoHome   = -1
	NoHuman  = -1
	NoWinner = -1
)

// MatchInfo is one scheduled match. The index of the match inside
// Tournament.MatchInfos is its chronological match number.
type MatchInfo struct {
	TeamIDs     [2]string `json:"team_ids"`
	TeamScores  [2]int    `json:"team_scores"`
	MatchDay    int       `json:"match_day"`
	HomeTeam    int       `json:"home_team"`
	FieldID     string    `json:"field_id,omitempty"`
	IsPlayer    [2]bool   `json:"is_player"`
	NeedsWinner bool      `json:"needs_winner"`
	HumanIndex  [2]int    `json:"human_index"`
}

// NewMatchInfo returns an unplayed match without teams.
func NewMatchInfo(matchDay int, needsWinner bool) MatchInfo {
	return MatchInfo{
		TeamScores:  [2]int{NoScore, NoScore},
		MatchDay:    matchDay,
		HomeTeam:    NoHome,
		NeedsWinner: needsWinner,
		HumanIndex:  [2]int{NoHuman, NoHuman},
	}
}

// Done reports whether both scores were recorded.
func (m *MatchInfo) Done() bool {
	return m.TeamScores[0] >= 0 && m.TeamScores[1] >= 0
}

// HasTeams reports whether both slots hold a team.
func (m *MatchInfo) HasTeams() bool {
	return m.TeamIDs[0] != "" && m.TeamIDs[1] != ""
}

// SlotOf returns the slot of teamID or -1.
func (m *MatchInfo) SlotOf(teamID string) int {
	if teamID == "" {
		return -1
	}
	for i, id := range m.TeamIDs {
		if id == teamID {
			return i
		}
	}
	return -1
}

// HasHuman reports whether any slot holds a human team.
func (m *MatchInfo) HasHuman() bool {
	return m.IsPlayer[0] || m.IsPlayer[1]
}

// Winner returns the winning slot, or NoWinner for draws and unplayed matches.
func (m *MatchInfo) Winner() int {
	if !m.Done() || m.TeamScores[0] == m.TeamScores[1] {
		return NoWinner
	}
	if m.TeamScores[0] > m.TeamScores[1] {
		return 0
	}
	return 1
}

// SetTeam fills a slot with a team and its human flags and clears the score.
func (m *MatchInfo) SetTeam(slot int, teamID string, humanIndex int) {
	m.TeamIDs[slot] = teamID
	m.TeamScores[slot] = NoScore
	m.HumanIndex[slot] = humanIndex
	m.IsPlayer[slot] = humanIndex != NoHuman
}

// Swap exchanges the two slots.
func (m *MatchInfo) Swap() {
	m.TeamIDs[0], m.TeamIDs[1] = m.TeamIDs[1], m.TeamIDs[0]
	m.TeamScores[0], m.TeamScores[1] = m.TeamScores[1], m.TeamScores[0]
	m.IsPlayer[0], m.IsPlayer[1] = m.IsPlayer[1], m.IsPlayer[0]
	m.HumanIndex[0], m.HumanIndex[1] = m.HumanIndex[1], m.HumanIndex[0]
	if m.HomeTeam != NoHome {
		m.HomeTeam = 1 - m.HomeTeam
	}
}

func (m MatchInfo) String() string {
	name := func(i int) string {
		if m.TeamIDs[i] == "" {
			return "[Empty]"
		}
		return m.TeamIDs[i]
	}
	if m.Done() {
		return fmt.Sprintf("%s %d - %d %s", name(0), m.TeamScores[0], m.TeamScores[1], name(1))
	}
	return fmt.Sprintf("%s vs. %s", name(0), name(1))
}
