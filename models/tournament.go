package models

// TournamentStatus is the lifecycle state of the active tournament.
type TournamentStatus string

const (
	StatusNotStarted TournamentStatus = "not_started"
	StatusInProgress TournamentStatus = "in_progress"
	StatusDone       TournamentStatus = "done"
)

// Tournament is the aggregate owned by a single controller.
type Tournament struct {
	ID            string         `json:"id"`
	Type          TournamentType `json:"type"`
	TeamIDs       []string       `json:"team_ids"`
	PlayerTeamIDs []string       `json:"player_team_ids"`
	MatchInfos    []MatchInfo    `json:"match_infos"`

	CurrentMatchIndex int        `json:"current_match_index"`
	Done              bool       `json:"done"`
	FinalMatchIndex   int        `json:"final_match_index"`
	RandomSeed        int64      `json:"random_seed"`
	Difficulty        int        `json:"difficulty"`
	GroupsInfo        [][]string `json:"groups_info,omitempty"`

	WinnerTeamID string `json:"winner_team_id,omitempty"`
	LoserTeamID  string `json:"loser_team_id,omitempty"`
	WinnerScore  int    `json:"winner_score"`
	LoserScore   int    `json:"loser_score"`
}

// Status derives the lifecycle state.
func (t *Tournament) Status() TournamentStatus {
	switch {
	case t == nil || len(t.MatchInfos) == 0:
		return StatusNotStarted
	case t.Done:
		return StatusDone
	default:
		return StatusInProgress
	}
}

// Clone returns a deep copy safe to hand out to readers.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	c.TeamIDs = append([]string(nil), t.TeamIDs...)
	c.PlayerTeamIDs = append([]string(nil), t.PlayerTeamIDs...)
	c.MatchInfos = append([]MatchInfo(nil), t.MatchInfos...)
	if t.GroupsInfo != nil {
		c.GroupsInfo = make([][]string, len(t.GroupsInfo))
		for i, g := range t.GroupsInfo {
			c.GroupsInfo[i] = append([]string(nil), g...)
		}
	}
	return &c
}

// CurrentMatch returns the match the tournament is waiting for, or nil.
func (t *Tournament) CurrentMatch() *MatchInfo {
	if t == nil || t.Done || t.CurrentMatchIndex < 0 || t.CurrentMatchIndex >= len(t.MatchInfos) {
		return nil
	}
	return &t.MatchInfos[t.CurrentMatchIndex]
}
