package services

import (
	"log/slog"

	"github.com/Dosada05/tournament-engine/models"
)

// setFields picks the home side and the field of every match with two known
// teams. Played matches are included: each decision only depends on the
// seed, the match index and earlier matches, so a restored tournament ends
// up with the same venues.
func (c *TournamentController) setFields() {
	if c.t == nil || c.derived == nil {
		return
	}
	matches := c.t.MatchInfos
	for i := range matches {
		m := &matches[i]
		if !m.HasTeams() {
			continue
		}
		rng := newStream(c.t.RandomSeed, streamFields, i)

		if i == c.t.FinalMatchIndex && c.t.Type != models.TypeCustom {
			m.HomeTeam = models.NoHome
			m.FieldID = ""
			if f, ok := c.fields.GetRandomField(rng, m.TeamIDs[0], m.TeamIDs[1]); ok {
				m.FieldID = f.ID
			} else {
				c.logger.Warn("no neutral field for the final", slog.Int("match_index", i))
			}
			continue
		}

		m.HomeTeam = c.homeSide(matches, i, rng.Intn(2))
		m.FieldID = ""
		if f, ok := c.fields.GetField(m.TeamIDs[m.HomeTeam]); ok {
			m.FieldID = f.ID
		} else if f, ok := c.fields.GetRandomField(rng); ok {
			m.FieldID = f.ID
		}
	}
}

// homeSide returns the slot that plays at home. AI-only matches are hosted
// by slot 0; otherwise the human with the lowest player index follows the
// field sequence. coin is only read for FieldRandom.
func (c *TournamentController) homeSide(matches []models.MatchInfo, i int, coin int) int {
	m := matches[i]
	if !m.HasHuman() {
		return 0
	}
	human := 0
	if !m.IsPlayer[0] || (m.IsPlayer[1] && m.HumanIndex[1] < m.HumanIndex[0]) {
		human = 1
	}

	switch c.derived.FieldSelectSequence {
	case models.FieldHomeOnly:
		return human
	case models.FieldAwayOnly:
		return 1 - human
	case models.FieldRandom:
		return coin
	default:
		id := m.TeamIDs[human]
		for j := i - 1; j >= 0; j-- {
			prev := matches[j]
			slot := prev.SlotOf(id)
			if slot < 0 {
				continue
			}
			if prev.HomeTeam == slot {
				return 1 - human
			}
			return human
		}
		return human
	}
}
