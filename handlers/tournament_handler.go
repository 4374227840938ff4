package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	tournamentService *services.TournamentService
	logger            *slog.Logger
}

func NewTournamentHandler(ts *services.TournamentService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts, logger: logger}
}

// StartHandler godoc
// @Summary Start a new tournament
// @Tags tournament
// @Description Ends the running tournament, if any, and starts a new one from a preset.
// @Accept json
// @Produce json
// @Param options body services.StartOptions true "Start options"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid configuration"
// @Failure 404 {object} map[string]string "Unknown preset"
// @Failure 424 {object} map[string]string "Team catalog cannot serve the request"
// @Security BearerAuth
// @Router /tournament [post]
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	var input services.StartOptions
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.SettingsID == "" {
		badRequestResponse(w, r, errors.New("settings_id is required"))
		return
	}

	result, err := h.tournamentService.Start(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	executor, _ := middleware.SubjectFromContext(r.Context())
	h.logger.Info("tournament started over http",
		slog.String("executor", executor),
		slog.String("tournament_id", result.Tournament.ID))

	response := jsonResponse{
		"tournament":    result.Tournament,
		"explain":       result.Explain,
		"auto_resolved": result.AutoResolved,
	}
	if len(result.Warnings) > 0 {
		response["warnings"] = result.Warnings
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EndHandler godoc
// @Summary End the running tournament
// @Tags tournament
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /tournament [delete]
func (h *TournamentHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.End(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "tournament ended"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SummaryHandler godoc
// @Summary Running tournament
// @Tags tournament
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "No active tournament"
// @Router /tournament [get]
func (h *TournamentHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.tournamentService.Summary()
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.tournamentService.Rounds()
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MatchHandler godoc
// @Summary One match of the schedule
// @Tags tournament
// @Produce json
// @Param index path string true "Match index or 'current'"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404 {object} map[string]string
// @Router /tournament/matches/{index} [get]
func (h *TournamentHandler) MatchHandler(w http.ResponseWriter, r *http.Request) {
	index, err := getMatchIndexFromURL(r, "index")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.tournamentService.Match(index)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) FinalMatchHandler(w http.ResponseWriter, r *http.Request) {
	match, err := h.tournamentService.FinalMatch()
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LogHandler godoc
// @Summary Standings
// @Tags tournament
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "No active tournament"
// @Router /tournament/log [get]
func (h *TournamentHandler) LogHandler(w http.ResponseWriter, r *http.Request) {
	log, err := h.tournamentService.Log()
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"log": log}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EndMatchHandler godoc
// @Summary Report the result of the current match
// @Tags tournament
// @Description Teams may be given in any order. AI-only matches that follow are played automatically.
// @Accept json
// @Produce json
// @Param result body services.MatchResult true "Final score"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Malformed body"
// @Failure 404 {object} map[string]string "No active tournament"
// @Failure 409 {object} map[string]string "Result does not fit the current match"
// @Security BearerAuth
// @Router /tournament/matches/result [post]
func (h *TournamentHandler) EndMatchHandler(w http.ResponseWriter, r *http.Request) {
	var input services.MatchResult
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TeamA == "" || input.TeamB == "" {
		badRequestResponse(w, r, errors.New("team_a and team_b are required"))
		return
	}

	result, err := h.tournamentService.EndMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// getMatchIndexFromURL accepts a non-negative index or "current".
func getMatchIndexFromURL(r *http.Request, param string) (int, error) {
	raw := chi.URLParam(r, param)
	if raw == "current" {
		return -1, nil
	}
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid %s parameter %q", param, raw)
	}
	return index, nil
}
