package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/tournament-engine/config"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testPresets = []models.TournamentSettings{
	{ID: "four", Type: models.TypeLogTournament, MaxTeams: 4, NumFaceEachOther: 1, MaxAiDifficulty: 2},
	{ID: "cup16", Type: models.TypeSingleElimination, MaxTeams: 16, MaxAiDifficulty: 2},
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	presets, err := config.NewPresets(testPresets)
	require.NoError(t, err)

	var teams []models.Team
	var fields []models.Field
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("T%d", i)
		teams = append(teams, models.Team{ID: id, Name: "Team " + id, Skill: i % 3})
		fields = append(fields, models.Field{ID: "F-" + id, Name: id + " Park", TeamID: id})
	}
	catalog := services.NewCatalog(teams, fields)
	controller := services.NewTournamentController(presets, catalog, catalog, repositories.NewMemoryKeyValueStore(), logger)
	ts := services.NewTournamentService(controller, presets, nil, nil, logger)

	th := NewTournamentHandler(ts, logger)
	sh := NewSettingsHandler(ts)

	r := chi.NewRouter()
	r.Get("/settings", sh.ListHandler)
	r.Get("/tournament", th.SummaryHandler)
	r.Post("/tournament", th.StartHandler)
	r.Delete("/tournament", th.EndHandler)
	r.Get("/tournament/matches", th.ScheduleHandler)
	r.Get("/tournament/matches/{index}", th.MatchHandler)
	r.Post("/tournament/matches/result", th.EndMatchHandler)
	r.Get("/tournament/final", th.FinalMatchHandler)
	r.Get("/tournament/log", th.LogHandler)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) (int, map[string]json.RawMessage) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec.Code, env
}

func TestSettingsHandler(t *testing.T) {
	router := newTestRouter(t)
	code, env := do(t, router, http.MethodGet, "/settings", nil)
	assert.Equal(t, http.StatusOK, code)

	var settings []models.TournamentSettings
	require.NoError(t, json.Unmarshal(env["settings"], &settings))
	assert.Len(t, settings, 2)
}

func TestReadEndpointsWithoutTournament(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{"/tournament", "/tournament/matches", "/tournament/matches/current", "/tournament/final", "/tournament/log"} {
		code, env := do(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, code, path)
		assert.Contains(t, env, "error", path)
	}
}

func TestStartHandlerErrors(t *testing.T) {
	router := newTestRouter(t)
	tests := []struct {
		name string
		body any
		want int
	}{
		{"malformed body", `{"settings_id":`, http.StatusBadRequest},
		{"unknown field", `{"settings_id":"four","colour":"red"}`, http.StatusBadRequest},
		{"missing settings id", map[string]any{}, http.StatusBadRequest},
		{"unknown preset", map[string]any{"settings_id": "nope"}, http.StatusNotFound},
		{"negative difficulty", map[string]any{"settings_id": "four", "difficulty": -2}, http.StatusBadRequest},
		{"catalog too small", map[string]any{"settings_id": "cup16"}, http.StatusFailedDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, router, http.MethodPost, "/tournament", tt.body)
			assert.Equal(t, tt.want, code)
			assert.Contains(t, env, "error")
		})
	}
}

func TestTournamentLifecycle(t *testing.T) {
	router := newTestRouter(t)

	code, env := do(t, router, http.MethodPost, "/tournament", map[string]any{
		"settings_id":     "four",
		"player_team_ids": []string{"T0", "T1", "T2", "T3"},
		"random_seed":     7,
	})
	require.Equal(t, http.StatusCreated, code)
	var tour models.Tournament
	require.NoError(t, json.Unmarshal(env["tournament"], &tour))
	assert.Len(t, tour.MatchInfos, 7)
	assert.Contains(t, env, "explain")

	code, env = do(t, router, http.MethodGet, "/tournament/matches", nil)
	require.Equal(t, http.StatusOK, code)
	var rounds []services.RoundView
	require.NoError(t, json.Unmarshal(env["rounds"], &rounds))
	assert.Len(t, rounds, 4)

	code, env = do(t, router, http.MethodGet, "/tournament/matches/current", nil)
	require.Equal(t, http.StatusOK, code)
	var current models.MatchInfo
	require.NoError(t, json.Unmarshal(env["match"], &current))

	code, _ = do(t, router, http.MethodGet, "/tournament/matches/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, http.MethodPost, "/tournament/matches/result", map[string]any{
		"team_a": current.TeamIDs[0], "score_a": 1, "team_b": "T9", "score_b": 0,
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = do(t, router, http.MethodPost, "/tournament/matches/result", map[string]any{
		"team_a": current.TeamIDs[1], "score_a": 0, "team_b": current.TeamIDs[0], "score_b": 2,
	})
	require.Equal(t, http.StatusOK, code)
	var result services.EndMatchResult
	require.NoError(t, json.Unmarshal(env["result"], &result))
	assert.Equal(t, [2]int{2, 0}, result.Match.TeamScores)

	code, env = do(t, router, http.MethodGet, "/tournament/log", nil)
	require.Equal(t, http.StatusOK, code)
	var log []models.TeamStats
	require.NoError(t, json.Unmarshal(env["log"], &log))
	require.Len(t, log, 4)
	assert.Equal(t, current.TeamIDs[0], log[0].TeamID)

	code, _ = do(t, router, http.MethodDelete, "/tournament", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, router, http.MethodGet, "/tournament", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, router, http.MethodPost, "/tournament/matches/result", map[string]any{
		"team_a": "T0", "score_a": 1, "team_b": "T1", "score_b": 0,
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestIssueToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	h := NewAuthHandler(services.NewAuthService("executor", string(hash)), "jwt-secret")
	r := chi.NewRouter()
	r.Post("/auth/token", h.IssueToken)

	code, _ := do(t, r, http.MethodPost, "/auth/token", map[string]string{"executor_id": "executor", "secret": "bad"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = do(t, r, http.MethodPost, "/auth/token", map[string]string{"executor_id": "executor"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := do(t, r, http.MethodPost, "/auth/token", map[string]string{"executor_id": "executor", "secret": "s3cret"})
	require.Equal(t, http.StatusOK, code)
	var raw string
	require.NoError(t, json.Unmarshal(env["token"], &raw))

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) { return []byte("jwt-secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, "executor", claims["sub"])
	assert.Equal(t, "executor", claims["role"])
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrNoActiveTournament, http.StatusNotFound},
		{fmt.Errorf("%w: x", services.ErrSettingsNotFound), http.StatusNotFound},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: x", models.ErrInvalidConfiguration), http.StatusBadRequest},
		{fmt.Errorf("%w: x", models.ErrInvalidMatchResult), http.StatusConflict},
		{fmt.Errorf("%w: x", models.ErrMissingDependency), http.StatusFailedDependency},
		{fmt.Errorf("%w: x", models.ErrSchedulingFailed), http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}

func TestEndMatchOnFinishedTournamentConflicts(t *testing.T) {
	router := newTestRouter(t)

	code, env := do(t, router, http.MethodPost, "/tournament", map[string]any{"settings_id": "four", "random_seed": 3})
	require.Equal(t, http.StatusCreated, code)
	var tour models.Tournament
	require.NoError(t, json.Unmarshal(env["tournament"], &tour))
	require.True(t, tour.Done)

	code, env = do(t, router, http.MethodPost, "/tournament/matches/result", map[string]any{
		"team_a": tour.TeamIDs[0], "score_a": 1, "team_b": tour.TeamIDs[1], "score_b": 0,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, env, "error")
}
