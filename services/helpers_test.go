package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/stretchr/testify/require"
)

type staticSettings []models.TournamentSettings

func (s staticSettings) GetSettings(id string) (models.TournamentSettings, bool) {
	for _, preset := range s {
		if preset.ID == id {
			return preset, true
		}
	}
	return models.TournamentSettings{}, false
}

func (s staticSettings) ListSettings() []models.TournamentSettings {
	return s
}

var testPresets = staticSettings{
	{ID: "four", Type: models.TypeLogTournament, MaxTeams: 4, NumFaceEachOther: 1, MaxAiDifficulty: 3},
	{ID: "league6", Type: models.TypeLogTournament, MaxTeams: 6, NumFaceEachOther: 2, MaxAiDifficulty: 3},
	{ID: "cup8", Type: models.TypeSingleElimination, MaxTeams: 8, MaxAiDifficulty: 3},
	{ID: "groups8", Type: models.TypeCustom, MaxTeams: 8, GroupSize: 4, NumFaceEachOther: 1, MaxAiDifficulty: 3},
	{ID: "home6", Type: models.TypeLogTournament, MaxTeams: 6, NumFaceEachOther: 1, FieldSelectSequence: models.FieldHomeOnly},
	{ID: "away6", Type: models.TypeLogTournament, MaxTeams: 6, NumFaceEachOther: 1, FieldSelectSequence: models.FieldAwayOnly},
	{ID: "random6", Type: models.TypeLogTournament, MaxTeams: 6, NumFaceEachOther: 2, FieldSelectSequence: models.FieldRandom},
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed(v int64) *int64 {
	return &v
}

func numberedTeams(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("T%02d", i)
	}
	return ids
}

// testCatalog gives every team a home field and adds one neutral field.
func testCatalog(ids ...string) *Catalog {
	teams := make([]models.Team, 0, len(ids))
	fields := make([]models.Field, 0, len(ids)+1)
	for i, id := range ids {
		teams = append(teams, models.Team{ID: id, Name: "Team " + id, Skill: i % 4, HomeFieldID: "F-" + id})
		fields = append(fields, models.Field{ID: "F-" + id, Name: id + " Park", TeamID: id})
	}
	fields = append(fields, models.Field{ID: "N-1", Name: "National Stadium"})
	return NewCatalog(teams, fields)
}

func newTestController(t *testing.T, catalog *Catalog, store repositories.KeyValueStore) *TournamentController {
	t.Helper()
	if store == nil {
		store = repositories.NewMemoryKeyValueStore()
	}
	return NewTournamentController(testPresets, catalog, catalog, store, discardLogger())
}

// playHumans reports a 1-0 win for the first human of each current match
// until the tournament is done or limit matches were played.
func playHumans(t *testing.T, c *TournamentController, limit int) {
	t.Helper()
	for played := 0; played < limit && !c.IsTournamentDone(); played++ {
		m, ok := c.GetMatchInfo(-1)
		require.True(t, ok)
		require.True(t, m.HasTeams(), "current match %s has no teams", m)
		winner := 0
		if !m.IsPlayer[0] {
			winner = 1
		}
		_, err := c.EndMatch(context.Background(), MatchResult{
			TeamA: m.TeamIDs[winner], ScoreA: 1,
			TeamB: m.TeamIDs[1-winner], ScoreB: 0,
		})
		require.NoError(t, err)
	}
}
