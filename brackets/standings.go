package brackets

import (
	"math/rand"

	"github.com/Dosada05/tournament-engine/models"
)

type StandingsParams struct {
	Matches []models.MatchInfo
	// UpToIndex excludes the match at this index and everything after it.
	UpToIndex int
	// ExcludeIndex is a match left out of the log, the final of a log
	// tournament. -1 keeps every match.
	ExcludeIndex  int
	TeamIDs       []string
	PlayerTeamIDs []string
	AiLevels      map[string]int
	// Rand flips the coin between two AI teams level on points and goal
	// difference. Without it the earlier team stays ahead.
	Rand *rand.Rand
}

// RecomputeStandings builds the log from the played matches. Teams are
// ranked by points, then goal difference. Exact ties are settled while
// inserting each team: a human is placed above every tied AI team, an AI
// team never passes a tied human, two AI teams flip a coin and two humans
// keep their input order.
func RecomputeStandings(p StandingsParams) []models.TeamStats {
	rows := make(map[string]*models.TeamStats, len(p.TeamIDs))
	ordered := make([]*models.TeamStats, 0, len(p.TeamIDs))
	for _, id := range p.TeamIDs {
		row := &models.TeamStats{
			TeamID:     id,
			AiLevel:    p.AiLevels[id],
			HumanIndex: HumanIndexOf(p.PlayerTeamIDs, id),
		}
		rows[id] = row
		ordered = append(ordered, row)
	}

	played := false
	upTo := min(p.UpToIndex, len(p.Matches))
	for i := 0; i < upTo; i++ {
		m := p.Matches[i]
		if i == p.ExcludeIndex || !m.Done() {
			continue
		}
		a, b := rows[m.TeamIDs[0]], rows[m.TeamIDs[1]]
		if a == nil || b == nil {
			continue
		}
		played = true
		applyResult(a, m.TeamScores[0], m.TeamScores[1])
		applyResult(b, m.TeamScores[1], m.TeamScores[0])
	}

	if played {
		ordered = insertionOrder(ordered, p.Rand)
	}

	log := make([]models.TeamStats, len(ordered))
	for i, row := range ordered {
		row.LogPosition = i
		log[i] = *row
	}
	return log
}

func applyResult(row *models.TeamStats, scored, conceded int) {
	row.Played++
	row.GoalsFor += scored
	row.GoalsAgainst += conceded
	row.GoalDifference += scored - conceded
	switch {
	case scored > conceded:
		row.Won++
		row.Points += 3
	case scored == conceded:
		row.Drawn++
		row.Points++
	default:
		row.Lost++
	}
}

func insertionOrder(teams []*models.TeamStats, rng *rand.Rand) []*models.TeamStats {
	sorted := make([]*models.TeamStats, 0, len(teams))
	for _, t := range teams {
		pos := len(sorted)
		for i, s := range sorted {
			if s.Points < t.Points || (s.Points == t.Points && s.GoalDifference < t.GoalDifference) {
				pos = i
				break
			}
			if s.Ties(t) {
				pos = tiePosition(sorted, i, t, rng)
				break
			}
		}
		sorted = append(sorted, nil)
		copy(sorted[pos+1:], sorted[pos:])
		sorted[pos] = t
	}
	return sorted
}

// tiePosition walks the run of rows tied with t, starting at first.
func tiePosition(sorted []*models.TeamStats, first int, t *models.TeamStats, rng *rand.Rand) int {
	j := first
	for ; j < len(sorted) && sorted[j].Ties(t); j++ {
		other := sorted[j]
		switch {
		case t.IsHuman() && !other.IsHuman():
			return j
		case t.IsHuman(), other.IsHuman():
			continue
		case rng != nil && rng.Intn(2) == 0:
			return j
		}
	}
	return j
}
